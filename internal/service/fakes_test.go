package service_test

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/ecom/internal/model"
	"github.com/tuanvumaihuynh/ecom/internal/repository"
	"github.com/tuanvumaihuynh/ecom/internal/storage/db"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// memStore is an in-memory stand-in for the database. WithTx serializes
// transactions and rolls the state back when the function fails.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	nextProductID int64
	products      map[int64]model.Product
	users         map[uuid.UUID]model.User
	lines         []model.CartLine
	outbox        []repository.CreateOutboxMsgParams

	// failWith makes every repository call fail.
	failWith error
	// afterActiveRead runs once after GetActiveProduct has read its row.
	afterActiveRead func()
}

func newMemStore() *memStore {
	return &memStore{
		products: map[int64]model.Product{},
		users:    map[uuid.UUID]model.User{},
	}
}

type memSnapshot struct {
	nextProductID int64
	products      map[int64]model.Product
	users         map[uuid.UUID]model.User
	lines         []model.CartLine
	outbox        []repository.CreateOutboxMsgParams
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return memSnapshot{
		nextProductID: s.nextProductID,
		products:      maps.Clone(s.products),
		users:         maps.Clone(s.users),
		lines:         slices.Clone(s.lines),
		outbox:        slices.Clone(s.outbox),
	}
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID = snap.nextProductID
	s.products = snap.products
	s.users = snap.users
	s.lines = snap.lines
	s.outbox = snap.outbox
}

func (s *memStore) topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	topics := make([]string, 0, len(s.outbox))
	for _, msg := range s.outbox {
		topics = append(topics, msg.Topic)
	}
	return topics
}

func (s *memStore) addProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextProductID++
	p.ID = s.nextProductID
	s.products[p.ID] = p
	return p
}

func (s *memStore) addUser(firstName string) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := model.User{ID: uuid.Must(uuid.NewV7()), FirstName: firstName, Role: model.UserRoleCustomer, CreatedAt: time.Now()}
	s.users[u.ID] = u
	return u
}

func (s *memStore) linesFor(productID int64) []model.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	var lines []model.CartLine
	for _, line := range s.lines {
		if line.ProductID == productID {
			lines = append(lines, line)
		}
	}
	return lines
}

type fakeDB struct {
	db.DB
	store *memStore
}

func (f *fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	f.store.txMu.Lock()
	defer f.store.txMu.Unlock()

	snap := f.store.snapshot()
	if err := txFunc(f); err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

type fakeProductRepo struct{ s *memStore }

func (r fakeProductRepo) WithDB(db.DB) repository.ProductRepository { return r }

func (r fakeProductRepo) CreateProduct(_ context.Context, params repository.ProductParams) (model.Product, error) {
	if r.s.failWith != nil {
		return model.Product{}, r.s.failWith
	}
	now := time.Now()
	return r.s.addProduct(model.Product{
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		Stock:       params.Stock,
		Category:    params.Category,
		ImageURL:    params.ImageURL,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}), nil
}

func (r fakeProductRepo) UpdateProduct(_ context.Context, id int64, params repository.ProductParams) (model.Product, error) {
	if r.s.failWith != nil {
		return model.Product{}, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || !p.Active {
		return model.Product{}, repository.ErrNotFound
	}
	p.Name = params.Name
	p.Description = params.Description
	p.Price = params.Price
	p.Stock = params.Stock
	p.Category = params.Category
	p.ImageURL = params.ImageURL
	p.UpdatedAt = time.Now()
	r.s.products[id] = p
	return p, nil
}

func (r fakeProductRepo) GetActiveProduct(ctx context.Context, id int64) (model.Product, error) {
	p, err := r.GetProductForUpdate(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if hook := r.s.afterActiveRead; hook != nil {
		r.s.afterActiveRead = nil
		hook()
	}
	if !p.Active {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r fakeProductRepo) GetProductForUpdate(_ context.Context, id int64) (model.Product, error) {
	if r.s.failWith != nil {
		return model.Product{}, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}
	return p, nil
}

func (r fakeProductRepo) ListActiveProducts(context.Context) ([]model.Product, error) {
	return r.filter(func(model.Product) bool { return true })
}

func (r fakeProductRepo) SearchProducts(_ context.Context, keyword string) ([]model.Product, error) {
	keyword = strings.ToLower(keyword)
	return r.filter(func(p model.Product) bool {
		return p.Stock > 0 &&
			(strings.Contains(strings.ToLower(p.Name), keyword) || strings.Contains(strings.ToLower(p.Description), keyword))
	})
}

func (r fakeProductRepo) filter(match func(model.Product) bool) ([]model.Product, error) {
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	products := []model.Product{}
	for _, id := range slices.Sorted(maps.Keys(r.s.products)) {
		if p := r.s.products[id]; p.Active && match(p) {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r fakeProductRepo) DeactivateProduct(_ context.Context, id int64) (bool, error) {
	if r.s.failWith != nil {
		return false, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || !p.Active {
		return false, nil
	}
	p.Active = false
	r.s.products[id] = p
	return true, nil
}

type fakeUserRepo struct{ s *memStore }

func (r fakeUserRepo) WithDB(db.DB) repository.UserRepository { return r }

func (r fakeUserRepo) CreateUser(_ context.Context, params repository.UserParams) (model.User, error) {
	if r.s.failWith != nil {
		return model.User{}, r.s.failWith
	}
	u := r.s.addUser(params.FirstName)
	return r.UpdateUser(context.Background(), u.ID, params)
}

func (r fakeUserRepo) GetUser(_ context.Context, id uuid.UUID) (model.User, error) {
	if r.s.failWith != nil {
		return model.User{}, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r fakeUserRepo) ListUsers(context.Context) ([]model.User, error) {
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := slices.Collect(maps.Values(r.s.users))
	slices.SortFunc(users, func(a, b model.User) int { return strings.Compare(a.ID.String(), b.ID.String()) })
	return users, nil
}

func (r fakeUserRepo) UpdateUser(_ context.Context, id uuid.UUID, params repository.UserParams) (model.User, error) {
	if r.s.failWith != nil {
		return model.User{}, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	role := params.Role
	if role == "" {
		role = model.UserRoleCustomer
	}
	u.FirstName = params.FirstName
	u.LastName = params.LastName
	u.Email = params.Email
	u.Phone = params.Phone
	u.Role = role
	u.Address = params.Address
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return u, nil
}

type fakeCartRepo struct{ s *memStore }

func (r fakeCartRepo) WithDB(db.DB) repository.CartRepository { return r }

func (r fakeCartRepo) CreateCartLine(_ context.Context, params repository.CreateCartLineParams) (model.CartLine, error) {
	if r.s.failWith != nil {
		return model.CartLine{}, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	line := model.CartLine{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    params.UserID,
		ProductID: params.ProductID,
		Quantity:  params.Quantity,
		CreatedAt: time.Now(),
	}
	r.s.lines = append(r.s.lines, line)
	return line, nil
}

func (r fakeCartRepo) SumQuantityByProduct(_ context.Context, productID int64) (int, error) {
	if r.s.failWith != nil {
		return 0, r.s.failWith
	}
	held := 0
	for _, line := range r.s.linesFor(productID) {
		held += line.Quantity
	}
	return held, nil
}

func (r fakeCartRepo) ListCartLinesByUser(_ context.Context, userID uuid.UUID) ([]model.CartLine, error) {
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lines := []model.CartLine{}
	for _, line := range slices.Backward(r.s.lines) {
		if line.UserID == userID {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

type fakeOutboxRepo struct{ s *memStore }

func (r fakeOutboxRepo) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r fakeOutboxRepo) CreateOutboxMsg(_ context.Context, params repository.CreateOutboxMsgParams) error {
	if r.s.failWith != nil {
		return r.s.failWith
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, params)
	return nil
}

func (r fakeOutboxRepo) ListUnprocessedOutboxMsgs(context.Context, repository.ListUnprocessedOutboxMsgsParams) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	return nil, nil
}

func (r fakeOutboxRepo) BulkUpdateOutboxMsgs(context.Context, repository.BulkUpdateOutboxMsgsParams) error {
	return nil
}
