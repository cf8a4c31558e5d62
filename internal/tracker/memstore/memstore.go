// Package memstore is an in-process Entity Store with the same referential
// and uniqueness rules as the postgres schema. It backs DB_DRIVER=memory and
// service tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

type DB struct {
	mu sync.RWMutex

	now func() time.Time

	users    map[int64]domain.User
	projects map[int64]domain.Project
	issues   map[int64]domain.Issue
	comments map[int64]domain.Comment

	nextUser, nextProject, nextIssue, nextComment int64
}

func New() *DB {
	return &DB{
		now:      time.Now,
		users:    make(map[int64]domain.User),
		projects: make(map[int64]domain.Project),
		issues:   make(map[int64]domain.Issue),
		comments: make(map[int64]domain.Comment),
	}
}

// SetClock replaces the time source used for created/updated stamps.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) Users() *Users       { return &Users{db: db} }
func (db *DB) Projects() *Projects { return &Projects{db: db} }
func (db *DB) Issues() *Issues     { return &Issues{db: db} }
func (db *DB) Comments() *Comments { return &Comments{db: db} }

// bump never lets updated_at move backwards.
func (db *DB) bump(prev time.Time) time.Time {
	n := db.now()
	if n.Before(prev) {
		return prev
	}
	return n
}

// Users

type Users struct{ db *DB }

func (r *Users) Create(ctx context.Context, in domain.CreateUserInput) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Store(err)
	}
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(in.Email))
	for _, u := range db.users {
		if u.Email == email {
			return nil, &domain.Error{Kind: domain.KindConflict, Message: domain.ErrUserExists.Message}
		}
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	db.nextUser++
	now := db.now()
	u := domain.User{
		ID:           db.nextUser,
		Email:        email,
		Name:         in.Name,
		Role:         role,
		PasswordHash: in.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.users[u.ID] = u
	return &u, nil
}

func (r *Users) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.NotFound(domain.MsgUserNotFound)
	}
	return &u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.NotFound(domain.MsgUserNotFound)
}

func (r *Users) List(ctx context.Context) ([]domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := make([]domain.User, 0, len(r.db.users))
	for _, u := range r.db.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *Users) UpdatePassword(ctx context.Context, id int64, hash string) error {
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return domain.NotFound(domain.MsgUserNotFound)
	}
	u.PasswordHash = hash
	u.UpdatedAt = db.bump(u.UpdatedAt)
	db.users[id] = u
	return nil
}

// Projects

type Projects struct{ db *DB }

func (r *Projects) Create(ctx context.Context, in domain.CreateProjectInput) (*domain.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Store(err)
	}
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	key := strings.ToUpper(strings.TrimSpace(in.Key))
	for _, p := range db.projects {
		if p.Key == key {
			return nil, domain.Conflict("project key already exists")
		}
	}
	db.nextProject++
	now := db.now()
	p := domain.Project{
		ID:          db.nextProject,
		Name:        in.Name,
		Key:         key,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	db.projects[p.ID] = p
	p.Count = &domain.ProjectCount{}
	return &p, nil
}

func (r *Projects) List(ctx context.Context) ([]domain.Project, error) {
	db := r.db
	db.mu.RLock()
	defer db.mu.RUnlock()

	counts := make(map[int64]int, len(db.projects))
	for _, is := range db.issues {
		counts[is.ProjectID]++
	}
	out := make([]domain.Project, 0, len(db.projects))
	for _, p := range db.projects {
		p.Count = &domain.ProjectCount{Issues: counts[p.ID]}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Projects) Get(ctx context.Context, id int64) (*domain.Project, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.projects[id]
	if !ok {
		return nil, domain.NotFound(domain.MsgProjectNotFound)
	}
	return &p, nil
}

func (r *Projects) GetByKey(ctx context.Context, key string) (*domain.Project, error) {
	key = strings.ToUpper(strings.TrimSpace(key))
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, p := range r.db.projects {
		if p.Key == key {
			return &p, nil
		}
	}
	return nil, domain.NotFound(domain.MsgProjectNotFound)
}

// Issues

type Issues struct{ db *DB }

func (r *Issues) Create(ctx context.Context, in domain.CreateIssueInput) (*domain.Issue, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Store(err)
	}
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.projects[in.ProjectID]; !ok {
		return nil, domain.Validation("projectId does not reference an existing project")
	}
	if _, ok := db.users[in.ReporterID]; !ok {
		return nil, domain.Validation("reporterId does not reference an existing user")
	}
	if in.AssigneeID != nil {
		if _, ok := db.users[*in.AssigneeID]; !ok {
			return nil, domain.Validation("assigneeId does not reference an existing user")
		}
	}

	status := domain.StatusOpen
	if in.Status != nil {
		status = *in.Status
	}
	priority := domain.PriorityMedium
	if in.Priority != nil {
		priority = *in.Priority
	}

	db.nextIssue++
	now := db.now()
	is := domain.Issue{
		ID:            db.nextIssue,
		Title:         in.Title,
		Description:   in.Description,
		Status:        status,
		Priority:      priority,
		ChipsetVendor: cloneVendor(in.ChipsetVendor),
		Chipset:       in.Chipset,
		ChipsetVer:    cloneString(in.ChipsetVer),
		ProjectID:     in.ProjectID,
		ReporterID:    in.ReporterID,
		AssigneeID:    cloneInt64(in.AssigneeID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	db.issues[is.ID] = is
	return &is, nil
}

func (r *Issues) Get(ctx context.Context, id int64) (*domain.Issue, error) {
	db := r.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	is, ok := db.issues[id]
	if !ok {
		return nil, domain.NotFound(domain.MsgIssueNotFound)
	}
	out := db.embed(is)
	return &out, nil
}

func (r *Issues) List(ctx context.Context, f domain.IssueFilter) ([]domain.Issue, error) {
	db := r.db
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]domain.Issue, 0, len(db.issues))
	for _, is := range db.issues {
		if f.ProjectID != nil && is.ProjectID != *f.ProjectID {
			continue
		}
		out = append(out, db.embed(is))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Issues) UpdateStatus(ctx context.Context, id int64, status domain.Status) error {
	if err := ctx.Err(); err != nil {
		return domain.Store(err)
	}
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()
	is, ok := db.issues[id]
	if !ok {
		return domain.NotFound(domain.MsgIssueNotFound)
	}
	is.Status = status
	is.UpdatedAt = db.bump(is.UpdatedAt)
	db.issues[id] = is
	return nil
}

func (r *Issues) Update(ctx context.Context, id int64, in domain.UpdateIssueInput) error {
	if err := ctx.Err(); err != nil {
		return domain.Store(err)
	}
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()
	is, ok := db.issues[id]
	if !ok {
		return domain.NotFound(domain.MsgIssueNotFound)
	}
	if !in.ClearAssignee && in.AssigneeID != nil {
		if _, ok := db.users[*in.AssigneeID]; !ok {
			return domain.Validation("assigneeId does not reference an existing user")
		}
	}

	if in.Title != nil {
		is.Title = *in.Title
	}
	if in.Description != nil {
		is.Description = *in.Description
	}
	if in.Status != nil {
		is.Status = *in.Status
	}
	if in.Priority != nil {
		is.Priority = *in.Priority
	}
	if in.ClearAssignee {
		is.AssigneeID = nil
	} else if in.AssigneeID != nil {
		is.AssigneeID = cloneInt64(in.AssigneeID)
	}
	if in.Chipset != nil {
		is.Chipset = *in.Chipset
	}
	if in.ChipsetVer != nil {
		is.ChipsetVer = cloneString(in.ChipsetVer)
	}
	if in.ChipsetVendor != nil {
		is.ChipsetVendor = cloneVendor(in.ChipsetVendor)
	}
	is.UpdatedAt = db.bump(is.UpdatedAt)
	db.issues[id] = is
	return nil
}

// Import bulk-inserts issues that carry their own timestamps. Ids are
// assigned by the store. Nothing is written if any row fails a reference check.
func (r *Issues) Import(ctx context.Context, rows []domain.Issue) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, domain.Store(err)
	}
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, is := range rows {
		if _, ok := db.projects[is.ProjectID]; !ok {
			return 0, domain.Validation("projectId does not reference an existing project")
		}
		if _, ok := db.users[is.ReporterID]; !ok {
			return 0, domain.Validation("reporterId does not reference an existing user")
		}
		if is.AssigneeID != nil {
			if _, ok := db.users[*is.AssigneeID]; !ok {
				return 0, domain.Validation("assigneeId does not reference an existing user")
			}
		}
	}
	for _, is := range rows {
		db.nextIssue++
		is.ID = db.nextIssue
		is.Project, is.Reporter, is.Assignee = nil, nil, nil
		is.AssigneeID = cloneInt64(is.AssigneeID)
		is.ChipsetVer = cloneString(is.ChipsetVer)
		is.ChipsetVendor = cloneVendor(is.ChipsetVendor)
		db.issues[is.ID] = is
	}
	return int64(len(rows)), nil
}

// embed must be called with db.mu held.
func (db *DB) embed(is domain.Issue) domain.Issue {
	if p, ok := db.projects[is.ProjectID]; ok {
		is.Project = &p
	}
	if u, ok := db.users[is.ReporterID]; ok {
		u.PasswordHash = ""
		is.Reporter = &u
	}
	if is.AssigneeID != nil {
		if u, ok := db.users[*is.AssigneeID]; ok {
			u.PasswordHash = ""
			is.Assignee = &u
		}
	}
	return is
}

// Comments

type Comments struct{ db *DB }

func (r *Comments) ListByIssue(ctx context.Context, issueID int64) ([]domain.Comment, error) {
	db := r.db
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]domain.Comment, 0, 8)
	for _, c := range db.comments {
		if c.IssueID == issueID {
			out = append(out, db.withAuthor(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *Comments) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	db := r.db
	db.mu.RLock()
	defer db.mu.RUnlock()
	c, ok := db.comments[id]
	if !ok {
		return nil, domain.NotFound(domain.MsgCommentNotFound)
	}
	out := db.withAuthor(c)
	return &out, nil
}

func (r *Comments) Create(ctx context.Context, in domain.CreateCommentInput) (*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.Store(err)
	}
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, ok := db.issues[in.IssueID]; !ok {
		return nil, domain.Validation("issueId does not reference an existing issue")
	}
	if _, ok := db.users[in.AuthorID]; !ok {
		return nil, domain.Validation("authorId does not reference an existing user")
	}
	db.nextComment++
	now := db.now()
	c := domain.Comment{
		ID:        db.nextComment,
		Content:   in.Content,
		IssueID:   in.IssueID,
		AuthorID:  in.AuthorID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.comments[c.ID] = c
	out := db.withAuthor(c)
	return &out, nil
}

func (r *Comments) UpdateContent(ctx context.Context, id int64, content string) (*domain.Comment, error) {
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()
	c, ok := db.comments[id]
	if !ok {
		return nil, domain.NotFound(domain.MsgCommentNotFound)
	}
	c.Content = content
	c.UpdatedAt = db.bump(c.UpdatedAt)
	db.comments[id] = c
	out := db.withAuthor(c)
	return &out, nil
}

func (r *Comments) Delete(ctx context.Context, id int64) error {
	db := r.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.comments[id]; !ok {
		return domain.NotFound(domain.MsgCommentNotFound)
	}
	delete(db.comments, id)
	return nil
}

func (db *DB) withAuthor(c domain.Comment) domain.Comment {
	if u, ok := db.users[c.AuthorID]; ok {
		c.Author = &domain.UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
	}
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}

func cloneVendor(v *domain.ChipsetVendor) *domain.ChipsetVendor {
	if v == nil {
		return nil
	}
	x := *v
	return &x
}
