package service

import (
	"bytes"
	"context"
	"errors"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"

	"github.com/barak121-cloud/sim-management-bh/internal/dto"
	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/internal/repository"
	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

var (
	ErrNoticeNotFound = errors.New("公告不存在")
	ErrNoticeEmpty    = errors.New("公告内容不能为空")
)

// noticeRenderer 公告内容按 Markdown 渲染；未开启 WithUnsafe，原始 HTML 会被丢弃
var noticeRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkhtml.WithHardWraps(),
	),
)

// NoticeService 公告板业务接口
type NoticeService interface {
	// List 最新的在前
	List(ctx context.Context) ([]dto.NoticeResponse, error)
	Create(ctx context.Context, authorID string, req *dto.CreateNoticeRequest) (*dto.NoticeResponse, error)
	Delete(ctx context.Context, id string, confirmed bool) error
}

type noticeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewNoticeService 创建 NoticeService 实例
func NewNoticeService(repo *repository.Repository, logger *zap.Logger) NoticeService {
	return &noticeService{repo: repo, logger: logger}
}

func (s *noticeService) List(ctx context.Context) ([]dto.NoticeResponse, error) {
	notices, err := s.repo.Notice.List(ctx)
	if err != nil {
		s.logger.Error("列出公告失败", zap.Error(err))
		return nil, err
	}

	names := map[string]string{}
	if users, err := s.repo.User.List(ctx); err == nil {
		for _, u := range users {
			names[u.ID] = u.Name
		}
	} else {
		s.logger.Warn("读取公告作者失败", zap.Error(err))
	}

	result := make([]dto.NoticeResponse, 0, len(notices))
	for _, n := range notices {
		resp := s.toResponse(n)
		if n.CreatedBy != nil {
			resp.AuthorName = names[*n.CreatedBy]
		}
		result = append(result, resp)
	}
	return result, nil
}

func (s *noticeService) Create(ctx context.Context, authorID string, req *dto.CreateNoticeRequest) (*dto.NoticeResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrNoticeEmpty
	}

	notice := &model.Notice{Content: content, CreatedBy: &authorID}
	if err := s.repo.Notice.Create(ctx, notice); err != nil {
		s.logger.Error("创建公告失败", zap.Error(err))
		return nil, err
	}

	resp := s.toResponse(*notice)
	return &resp, nil
}

func (s *noticeService) Delete(ctx context.Context, id string, confirmed bool) error {
	if _, err := s.repo.Notice.GetByID(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrNoticeNotFound
		}
		s.logger.Error("查询公告失败", zap.String("notice_id", id), zap.Error(err))
		return err
	}
	if !confirmed {
		return ErrConfirmationRequired
	}

	if err := s.repo.Notice.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return ErrNoticeNotFound
		}
		s.logger.Error("删除公告失败", zap.String("notice_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *noticeService) toResponse(n model.Notice) dto.NoticeResponse {
	return dto.NoticeResponse{Notice: n, ContentHTML: renderNotice(n.Content)}
}

// renderNotice 渲染失败时退回转义后的纯文本
func renderNotice(content string) string {
	var buf bytes.Buffer
	if err := noticeRenderer.Convert([]byte(content), &buf); err != nil {
		return html.EscapeString(content)
	}
	return buf.String()
}
