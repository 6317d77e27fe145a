// Package session 会话持有者：保存当前登录用户的快照。
//
// 会话以 JSON 形式存放在 kv.Store 中（<prefix>_session:<id>），令牌的 jti 即会话 ID。
// 每个用户的会话 ID 另存一份索引（<prefix>_user_sessions:<userID>），管理员修改用户后据此刷新全部快照。
// 会话随令牌一同过期：支持 TTL 的存储（redis）自动淘汰，其余存储在读到过期会话时删除。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/barak121-cloud/sim-management-bh/internal/model"
	"github.com/barak121-cloud/sim-management-bh/pkg/jwt"
	"github.com/barak121-cloud/sim-management-bh/pkg/kv"
)

var ErrSessionNotFound = errors.New("会话不存在或已登出")

// Session 一次登录的会话
type Session struct {
	ID        string     `json:"id"`
	User      model.User `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
}

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Manager 会话管理器
type Manager struct {
	store  kv.Store
	jwtMgr *jwt.Manager
	prefix string
	now    func() time.Time

	// 保护用户会话索引的读改写
	indexMu sync.Mutex
}

// NewManager 创建会话管理器
func NewManager(store kv.Store, jwtMgr *jwt.Manager, prefix string) *Manager {
	return &Manager{
		store:  store,
		jwtMgr: jwtMgr,
		prefix: prefix,
		now:    time.Now,
	}
}

func (m *Manager) key(id string) string {
	return m.prefix + "_session:" + id
}

func (m *Manager) indexKey(userID string) string {
	return m.prefix + "_user_sessions:" + userID
}

// Open 为用户建立会话并签发令牌
func (m *Manager) Open(ctx context.Context, user model.User) (*Session, string, error) {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(m.jwtMgr.TTL()),
	}
	if err := m.save(ctx, s); err != nil {
		return nil, "", err
	}

	token, err := m.jwtMgr.GenerateAccessToken(s.ID, user.ID, string(user.Role))
	if err != nil {
		_ = m.store.Remove(ctx, m.key(s.ID))
		return nil, "", fmt.Errorf("签发令牌失败: %w", err)
	}

	if err := m.track(ctx, user.ID, s.ID); err != nil {
		_ = m.store.Remove(ctx, m.key(s.ID))
		return nil, "", err
	}
	return s, token, nil
}

// Load 读取会话
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	raw, ok, err := m.store.Get(ctx, m.key(id))
	if err != nil {
		return nil, fmt.Errorf("读取会话失败: %w", err)
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("解析会话失败: %w", err)
	}
	if s.expired(m.now()) {
		_ = m.Close(ctx, id)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// Authenticate 校验令牌并加载其绑定的会话
func (m *Manager) Authenticate(ctx context.Context, token string) (*Session, error) {
	claims, err := m.jwtMgr.ParseToken(token)
	if errors.Is(err, jwt.ErrTokenExpired) {
		// 过期令牌的签名仍然有效时，顺手清理它引用的会话
		if expired, perr := m.jwtMgr.ParseExpired(token); perr == nil {
			_ = m.Close(ctx, expired.SessionID())
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	s, err := m.Load(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if s.User.ID != claims.UserID {
		return nil, jwt.ErrTokenInvalid
	}
	return s, nil
}

// Refresh 用最新的用户记录替换会话快照
func (m *Manager) Refresh(ctx context.Context, id string, user model.User) (*Session, error) {
	s, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.User = user
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// RefreshUser 用最新的用户记录刷新该用户的全部会话（角色或状态被管理员修改后调用）
// 已不存在的会话顺带从索引中移除
func (m *Manager) RefreshUser(ctx context.Context, user model.User) error {
	ids, err := m.sessionIDs(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, err := m.Refresh(ctx, id, user); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return err
		}
	}
	return m.prune(ctx, user.ID)
}

// Close 登出：删除会话，之后该令牌不再可用
func (m *Manager) Close(ctx context.Context, id string) error {
	raw, ok, err := m.store.Get(ctx, m.key(id))
	if err != nil {
		return fmt.Errorf("读取会话失败: %w", err)
	}
	if err := m.store.Remove(ctx, m.key(id)); err != nil {
		return err
	}
	if !ok {
		return nil
	}
	var s Session
	if json.Unmarshal([]byte(raw), &s) == nil && s.User.ID != "" {
		return m.prune(ctx, s.User.ID)
	}
	return nil
}

// TTL 令牌有效期
func (m *Manager) TTL() time.Duration {
	return m.jwtMgr.TTL()
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	if err := m.set(ctx, m.key(s.ID), string(raw), s.ExpiresAt); err != nil {
		return fmt.Errorf("保存会话失败: %w", err)
	}
	return nil
}

// set 存储支持 TTL 时按过期时间写入
func (m *Manager) set(ctx context.Context, key, value string, expiresAt time.Time) error {
	if es, ok := m.store.(kv.Expiring); ok && !expiresAt.IsZero() {
		ttl := expiresAt.Sub(m.now())
		if ttl <= 0 {
			return m.store.Remove(ctx, key)
		}
		return es.SetWithTTL(ctx, key, value, ttl)
	}
	return m.store.Set(ctx, key, value)
}

// ────── 用户会话索引 ──────

func (m *Manager) sessionIDs(ctx context.Context, userID string) ([]string, error) {
	raw, ok, err := m.store.Get(ctx, m.indexKey(userID))
	if err != nil {
		return nil, fmt.Errorf("读取会话索引失败: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("解析会话索引失败: %w", err)
	}
	return ids, nil
}

func (m *Manager) saveIndex(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return m.store.Remove(ctx, m.indexKey(userID))
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, m.indexKey(userID), string(raw))
}

// track 登记新会话，同时剔除已失效的旧会话
func (m *Manager) track(ctx context.Context, userID, id string) error {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()

	ids, err := m.liveIDs(ctx, userID)
	if err != nil {
		return err
	}
	return m.saveIndex(ctx, userID, append(ids, id))
}

func (m *Manager) prune(ctx context.Context, userID string) error {
	m.indexMu.Lock()
	defer m.indexMu.Unlock()

	ids, err := m.liveIDs(ctx, userID)
	if err != nil {
		return err
	}
	return m.saveIndex(ctx, userID, ids)
}

// liveIDs 索引中仍然存在且未过期的会话；过期会话在这里删除
func (m *Manager) liveIDs(ctx context.Context, userID string) ([]string, error) {
	ids, err := m.sessionIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := m.now()
	live := ids[:0]
	for _, id := range ids {
		raw, ok, err := m.store.Get(ctx, m.key(id))
		if err != nil {
			return nil, fmt.Errorf("读取会话失败: %w", err)
		}
		if !ok {
			continue
		}
		var s Session
		if json.Unmarshal([]byte(raw), &s) != nil || s.expired(now) {
			_ = m.store.Remove(ctx, m.key(id))
			continue
		}
		live = append(live, id)
	}
	return live, nil
}
