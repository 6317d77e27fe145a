package tablestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	pkgerrors "github.com/barak121-cloud/sim-management-bh/pkg/errors"
)

// PostgREST Supabase 风格的 REST 表服务（/rest/v1/<table>）
type PostgREST struct {
	client *resty.Client
}

// NewPostgREST baseURL 为项目地址（不含 /rest/v1），apiKey 同时作为 apikey 与 Bearer 凭证
func NewPostgREST(baseURL, apiKey string, timeout time.Duration) *PostgREST {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("apikey", apiKey).
		SetHeader("Authorization", "Bearer "+apiKey)

	return &PostgREST{client: client}
}

func (p *PostgREST) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	var rows []Row
	req := p.client.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetResult(&rows)

	for col, v := range q.Eq {
		req.SetQueryParam(col, "eq."+fmt.Sprint(deref(v)))
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		req.SetQueryParam("order", q.OrderBy+"."+dir)
	}

	resp, err := req.Get("/" + table)
	if err := checkResponse(resp, err, "select", table); err != nil {
		return nil, err
	}
	return rows, nil
}

func (p *PostgREST) Insert(ctx context.Context, table string, row Row) (Row, error) {
	var rows []Row
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(row).
		SetResult(&rows).
		Post("/" + table)
	if err := checkResponse(resp, err, "insert", table); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: insert %s 未返回记录", pkgerrors.ErrBackendUnavailable, table)
	}
	return rows[0], nil
}

func (p *PostgREST) Update(ctx context.Context, table, id string, fields Row) (Row, error) {
	var rows []Row
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam(IDColumn, "eq."+id).
		SetBody(fields).
		SetResult(&rows).
		Patch("/" + table)
	if err := checkResponse(resp, err, "update", table); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

func (p *PostgREST) Delete(ctx context.Context, table, id string) error {
	var rows []Row
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam(IDColumn, "eq."+id).
		SetResult(&rows).
		Delete("/" + table)
	if err := checkResponse(resp, err, "delete", table); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

func checkResponse(resp *resty.Response, err error, op, table string) error {
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", pkgerrors.ErrBackendUnavailable, op, table, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: %s %s 返回 %d: %s",
			pkgerrors.ErrBackendUnavailable, op, table, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return nil
}
