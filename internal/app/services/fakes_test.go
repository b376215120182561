package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/repositories"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

type tokenRow struct {
	userID  int64
	expiry  time.Time
	revoked bool
}

// memStore is an in-memory stand-in for the PostgreSQL schema. It enforces the
// same keys and unique indexes the migrations declare.
type memStore struct {
	mu           sync.Mutex
	txMu         sync.Mutex
	posts        map[int64]*models.Post
	participants map[int64][]*models.Participant
	reports      map[int64]*models.Report
	users        map[int64]*models.User
	tokens       map[string]tokenRow
	nextUserID   int64
}

func newMemStore() *memStore {
	return &memStore{
		posts:        map[int64]*models.Post{},
		participants: map[int64][]*models.Participant{},
		reports:      map[int64]*models.Report{},
		users:        map[int64]*models.User{},
		tokens:       map[string]tokenRow{},
	}
}

type memSnapshot struct {
	posts        map[int64]*models.Post
	participants map[int64][]*models.Participant
	reports      map[int64]*models.Report
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := memSnapshot{
		posts:        make(map[int64]*models.Post, len(s.posts)),
		participants: make(map[int64][]*models.Participant, len(s.participants)),
		reports:      make(map[int64]*models.Report, len(s.reports)),
	}
	for k, v := range s.posts {
		snap.posts[k] = copyPost(v)
	}
	for k, v := range s.participants {
		snap.participants[k] = copyParticipants(v)
	}
	for k, v := range s.reports {
		snap.reports[k] = copyReport(v)
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = snap.posts
	s.participants = snap.participants
	s.reports = snap.reports
}

func copyPost(p *models.Post) *models.Post {
	c := *p
	if p.SelectedParticipantID != nil {
		id := *p.SelectedParticipantID
		c.SelectedParticipantID = &id
	}
	return &c
}

func copyParticipant(p *models.Participant) *models.Participant {
	c := *p
	return &c
}

func copyParticipants(ps []*models.Participant) []*models.Participant {
	out := make([]*models.Participant, 0, len(ps))
	for _, p := range ps {
		out = append(out, copyParticipant(p))
	}
	return out
}

func copyReport(r *models.Report) *models.Report {
	c := *r
	return &c
}

// addUser stores a user and returns its id
func (s *memStore) addUser(first, last string, role models.RoleType) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextUserID++
	id := s.nextUserID
	s.users[id] = &models.User{
		ID:        id,
		Email:     first + "@northeastern.edu",
		FirstName: first,
		LastName:  last,
		RoleType:  role,
		IsActive:  true,
	}
	return id
}

// WithTx serializes transactions and rolls the store back when fn fails
func (s *memStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos repositories.TxRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, s); err != nil {
		s.restore(snap)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) Posts() repositories.IPostRepository               { return memPosts{s} }
func (s *memStore) Participants() repositories.IParticipantRepository { return memParticipants{s} }
func (s *memStore) Reports() repositories.IReportRepository           { return memReports{s} }

type memPosts struct{ s *memStore }

func (r memPosts) Create(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[post.UserID]; !ok {
		return apperrors.ErrUserNotFound
	}
	if post.Version == 0 {
		post.Version = 1
	}
	r.s.posts[post.ID] = copyPost(post)
	return nil
}

func (r memPosts) GetByID(_ context.Context, id int64) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, apperrors.ErrPostNotFound
	}
	return copyPost(p), nil
}

func (r memPosts) GetByIDForUpdate(ctx context.Context, id int64) (*models.Post, error) {
	return r.GetByID(ctx, id)
}

func (r memPosts) Update(_ context.Context, post *models.Post) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.posts[post.ID]
	if !ok || stored.Version != post.Version {
		return apperrors.ErrConcurrentModification
	}
	post.Version++
	r.s.posts[post.ID] = copyPost(post)
	return nil
}

func (r memPosts) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[id]; !ok {
		return apperrors.ErrPostNotFound
	}
	delete(r.s.posts, id)
	// ON DELETE CASCADE
	delete(r.s.participants, id)
	return nil
}

func (r memPosts) list(keep func(*models.Post) bool) []*models.Post {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Post{}
	for _, p := range r.s.posts {
		if keep(p) {
			out = append(out, copyPost(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r memPosts) List(context.Context) ([]*models.Post, error) {
	return r.list(func(*models.Post) bool { return true }), nil
}

func (r memPosts) ListByOwner(_ context.Context, userID int64) ([]*models.Post, error) {
	return r.list(func(p *models.Post) bool { return p.UserID == userID }), nil
}

func (r memPosts) ListByParticipant(_ context.Context, userID int64) ([]*models.Post, error) {
	r.s.mu.Lock()
	joined := map[int64]bool{}
	for postID, ps := range r.s.participants {
		for _, p := range ps {
			if p.UserID == userID {
				joined[postID] = true
			}
		}
	}
	r.s.mu.Unlock()
	return r.list(func(p *models.Post) bool { return joined[p.ID] }), nil
}

type memParticipants struct{ s *memStore }

func (r memParticipants) ListByPost(_ context.Context, postID int64) ([]*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyParticipants(r.s.participants[postID]), nil
}

func (r memParticipants) ListByPosts(_ context.Context, postIDs []int64) (map[int64][]*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int64][]*models.Participant, len(postIDs))
	for _, id := range postIDs {
		if ps := r.s.participants[id]; len(ps) > 0 {
			out[id] = copyParticipants(ps)
		}
	}
	return out, nil
}

func (r memParticipants) Insert(_ context.Context, p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[p.PostID]; !ok {
		return apperrors.ErrPostNotFound
	}
	for _, existing := range r.s.participants[p.PostID] {
		if existing.UserID == p.UserID {
			return apperrors.ErrAlreadyParticipating
		}
	}
	if err := r.checkSelectedUnique(p); err != nil {
		return err
	}
	r.s.participants[p.PostID] = append(r.s.participants[p.PostID], copyParticipant(p))
	return nil
}

func (r memParticipants) Update(_ context.Context, p *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.checkSelectedUnique(p); err != nil {
		return err
	}
	for i, existing := range r.s.participants[p.PostID] {
		if existing.UserID == p.UserID {
			r.s.participants[p.PostID][i] = copyParticipant(p)
			return nil
		}
	}
	return apperrors.ErrParticipantNotFound
}

// checkSelectedUnique mirrors the partial unique index on the selected lineage
func (r memParticipants) checkSelectedUnique(p *models.Participant) error {
	if !p.Status.IsSelectedLineage() {
		return nil
	}
	for _, existing := range r.s.participants[p.PostID] {
		if existing.UserID != p.UserID && existing.Status.IsSelectedLineage() {
			return apperrors.ErrAlreadySelected
		}
	}
	return nil
}

func (r memParticipants) Delete(_ context.Context, postID, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ps := r.s.participants[postID]
	for i, existing := range ps {
		if existing.UserID == userID {
			r.s.participants[postID] = append(ps[:i:i], ps[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrParticipantNotFound
}

type memReports struct{ s *memStore }

func (r memReports) Create(_ context.Context, report *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reports[report.ID] = copyReport(report)
	return nil
}

func (r memReports) GetByID(_ context.Context, id int64) (*models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	report, ok := r.s.reports[id]
	if !ok {
		return nil, apperrors.ErrReportNotFound
	}
	return copyReport(report), nil
}

func (r memReports) GetByIDForUpdate(ctx context.Context, id int64) (*models.Report, error) {
	return r.GetByID(ctx, id)
}

func (r memReports) List(_ context.Context, resolution models.ReportResolution) ([]*models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*models.Report{}
	for _, report := range r.s.reports {
		if resolution == "" || report.Resolution == resolution {
			out = append(out, copyReport(report))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r memReports) Update(_ context.Context, report *models.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reports[report.ID]; !ok {
		return apperrors.ErrReportNotFound
	}
	r.s.reports[report.ID] = copyReport(report)
	return nil
}

func (r memReports) ResolveOpenByPost(_ context.Context, postID int64, resolution models.ReportResolution, resolvedBy int64, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, report := range r.s.reports {
		if report.PostID == postID && report.IsOpen() {
			by, when := resolvedBy, at
			report.Resolution = resolution
			report.ResolvedBy = &by
			report.ResolvedAt = &when
			n++
		}
	}
	return n, nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	r.s.nextUserID++
	user.ID = r.s.nextUserID
	c := *user
	r.s.users[user.ID] = &c
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r memUsers) GetByIDs(_ context.Context, ids []int64) (map[int64]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make(map[int64]*models.User, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			c := *u
			out[id] = &c
		}
	}
	return out, nil
}

func (r memUsers) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r memUsers) UpdateLastLogin(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[userID]; ok {
		now := time.Now().UTC()
		u.LastLoginAt = &now
	}
	return nil
}

func (r memUsers) UpdateName(_ context.Context, userID int64, firstName, lastName string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u.FirstName, u.LastName = firstName, lastName
	u.UpdatedAt = time.Now().UTC()
	c := *u
	return &c, nil
}

type memTokens struct{ s *memStore }

func (r memTokens) CreateToken(_ context.Context, token string, userID int64, expiry time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tokens[token]; ok {
		return apperrors.ErrTokenInvalid
	}
	r.s.tokens[token] = tokenRow{userID: userID, expiry: expiry}
	return nil
}

func (r memTokens) GetTokenByValue(_ context.Context, token string) (int64, time.Time, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.tokens[token]
	switch {
	case !ok:
		return 0, time.Time{}, false, apperrors.ErrTokenNotFound
	case row.revoked:
		return 0, time.Time{}, false, apperrors.ErrTokenRevoked
	case row.expiry.Before(time.Now()):
		return 0, time.Time{}, false, apperrors.ErrTokenExpired
	}
	return row.userID, row.expiry, false, nil
}

func (r memTokens) RevokeToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	row.revoked = true
	r.s.tokens[token] = row
	return nil
}

func (r memTokens) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, row := range r.s.tokens {
		if row.userID == userID {
			row.revoked = true
			r.s.tokens[k] = row
		}
	}
	return nil
}

func (r memTokens) CleanupExpiredTokens(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, row := range r.s.tokens {
		if row.expiry.Before(time.Now()) {
			delete(r.s.tokens, k)
			n++
		}
	}
	return n, nil
}
