package application

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ppfood/api/internal/domain/entity"
	repo "github.com/ppfood/api/internal/domain/repository"
	"github.com/ppfood/api/pkg/apperr"
)

// In-memory repository fakes backing the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*entity.User

	// tokens participates in UpdatePasswordAndRevokeTokens, mirroring the
	// transactional pairing of the real store.
	tokens *fakeTokenRepo

	// failGetByEmail, when set, simulates a store outage on lookups by email.
	failGetByEmail error
}

func newFakeUserRepo(tokens *fakeTokenRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*entity.User{}, tokens: tokens}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return apperr.Conflict("a record with this information already exists")
		}
	}
	f.seq++
	u.ID = f.seq
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGetByEmail != nil {
		return nil, f.failGetByEmail
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) GetByVerificationCode(_ context.Context, code string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if !u.IsVerified && u.VerificationCode == code &&
			u.VerificationCodeExpiry != nil && u.VerificationCodeExpiry.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) GetByResetCode(_ context.Context, code string, now time.Time) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ResetCode == code && u.ResetCodeExpiry != nil && u.ResetCodeExpiry.After(now) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	cp := *u
	cp.UpdatedAt = time.Now()
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) SetVerified(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.IsVerified = true
	u.VerificationCode = ""
	u.VerificationCodeExpiry = nil
	return nil
}

func (f *fakeUserRepo) SetVerificationCode(_ context.Context, id int64, code string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.VerificationCode = code
	u.VerificationCodeExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) SetResetCode(_ context.Context, id int64, code string, expiry time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.ResetCode = code
	u.ResetCodeExpiry = &expiry
	return nil
}

func (f *fakeUserRepo) UpdatePasswordAndRevokeTokens(ctx context.Context, id int64, passwordHash string) error {
	f.mu.Lock()
	u, ok := f.users[id]
	if !ok {
		f.mu.Unlock()
		return apperr.NotFound("user not found")
	}
	u.PasswordHash = passwordHash
	u.ResetCode = ""
	u.ResetCodeExpiry = nil
	f.mu.Unlock()
	if f.tokens != nil {
		return f.tokens.RevokeAllForUser(ctx, id)
	}
	return nil
}

var (
	_ repo.UserRepository    = (*fakeUserRepo)(nil)
	_ repo.TokenRepository   = (*fakeTokenRepo)(nil)
	_ repo.CartRepository    = (*fakeCartRepo)(nil)
	_ repo.ProductRepository = (*fakeProductRepo)(nil)
)

type fakeTokenRepo struct {
	mu     sync.Mutex
	seq    int64
	tokens []*entity.RefreshToken
}

func newFakeTokenRepo() *fakeTokenRepo { return &fakeTokenRepo{} }

func (f *fakeTokenRepo) Create(_ context.Context, t *entity.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	t.ID = f.seq
	t.CreatedAt = time.Now()
	cp := *t
	f.tokens = append(f.tokens, &cp)
	return nil
}

func (f *fakeTokenRepo) LatestActive(_ context.Context, userID int64, now time.Time) (*entity.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var newest *entity.RefreshToken
	for _, t := range f.tokens {
		if t.UserID != userID || !t.Active(now) {
			continue
		}
		if newest == nil || t.ID > newest.ID {
			newest = t
		}
	}
	if newest == nil {
		return nil, apperr.NotFound("no active refresh token")
	}
	cp := *newest
	return &cp, nil
}

func (f *fakeTokenRepo) ActiveByUser(_ context.Context, userID int64) ([]*entity.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.RefreshToken
	for _, t := range f.tokens {
		if t.UserID == userID && !t.Revoked {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTokenRepo) Revoke(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.ID == id {
			t.Revoked = true
			return nil
		}
	}
	return apperr.NotFound("refresh token not found")
}

func (f *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (f *fakeTokenRepo) Rotate(_ context.Context, replacement *entity.RefreshToken, oldID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var old *entity.RefreshToken
	for _, t := range f.tokens {
		if t.ID == oldID && !t.Revoked {
			old = t
			break
		}
	}
	if old == nil {
		return apperr.NotFound("refresh token not found")
	}
	f.seq++
	replacement.ID = f.seq
	replacement.CreatedAt = time.Now()
	cp := *replacement
	f.tokens = append(f.tokens, &cp)
	old.Revoked = true
	old.ReplacedByID = &cp.ID
	return nil
}

type fakeCartRepo struct {
	mu      sync.Mutex
	cartSeq int64
	itemSeq int64
	carts   map[int64]*entity.Cart // keyed by user id
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[int64]*entity.Cart{}}
}

func (f *fakeCartRepo) GetByUserID(_ context.Context, userID int64) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.carts[userID]
	if !ok {
		return nil, apperr.NotFound("cart not found")
	}
	return f.snapshot(c), nil
}

func (f *fakeCartRepo) snapshot(c *entity.Cart) *entity.Cart {
	cp := *c
	cp.Items = make([]entity.CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	sort.Slice(cp.Items, func(i, j int) bool { return cp.Items[i].ID < cp.Items[j].ID })
	return &cp
}

func (f *fakeCartRepo) Create(_ context.Context, userID int64) (*entity.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cartSeq++
	c := &entity.Cart{ID: f.cartSeq, UserID: userID, Items: []entity.CartItem{}, CreatedAt: time.Now()}
	f.carts[userID] = c
	return f.snapshot(c), nil
}

func (f *fakeCartRepo) GetItem(_ context.Context, cartID, itemID int64) (*entity.CartItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.ID != cartID {
			continue
		}
		for _, it := range c.Items {
			if it.ID == itemID {
				cp := it
				return &cp, nil
			}
		}
	}
	return nil, apperr.NotFound("cart item not found")
}

func (f *fakeCartRepo) CreateItem(_ context.Context, item *entity.CartItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.ID == item.CartID {
			f.itemSeq++
			item.ID = f.itemSeq
			item.CreatedAt = time.Now()
			if item.SelectedOptions == nil {
				item.SelectedOptions = []entity.ItemOption{}
			}
			c.Items = append(c.Items, *item)
			return nil
		}
	}
	return apperr.NotFound("cart not found")
}

func (f *fakeCartRepo) UpdateItemQuantity(_ context.Context, itemID int64, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				return nil
			}
		}
	}
	return apperr.NotFound("cart item not found")
}

func (f *fakeCartRepo) UpdateItem(_ context.Context, itemID int64, quantity int, options []entity.ItemOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if options == nil {
		options = []entity.ItemOption{}
	}
	for _, c := range f.carts {
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items[i].Quantity = quantity
				c.Items[i].SelectedOptions = options
				return nil
			}
		}
	}
	return apperr.NotFound("cart item not found")
}

func (f *fakeCartRepo) DeleteItem(_ context.Context, cartID, itemID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.ID != cartID {
			continue
		}
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				c.Items = append(c.Items[:i], c.Items[i+1:]...)
				return nil
			}
		}
	}
	return nil
}

func (f *fakeCartRepo) ClearItems(_ context.Context, cartID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.carts {
		if c.ID == cartID {
			c.Items = []entity.CartItem{}
		}
	}
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	seq      int64
	products map[int64]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int64]*entity.Product{}}
}

func (f *fakeProductRepo) add(name string, price float64) *entity.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p := &entity.Product{ID: f.seq, CategoryID: 1, NameTH: name, NameEN: name, Price: price, IsAvailable: true}
	f.products[p.ID] = p
	return p
}

func (f *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	p.ID = f.seq
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) List(_ context.Context, filter repo.ProductFilter) ([]*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Product
	for _, p := range f.products {
		if len(filter.IDs) > 0 {
			found := false
			for _, id := range filter.IDs {
				if id == p.ID {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) GetByIDs(_ context.Context, ids []int64) (map[int64]*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]*entity.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Update(_ context.Context, id int64, upd repo.ProductUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return apperr.NotFound("product not found")
	}
	if upd.Price != nil {
		p.Price = *upd.Price
	}
	if upd.IsAvailable != nil {
		p.IsAvailable = *upd.IsAvailable
	}
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return apperr.NotFound("product not found")
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) DeleteImage(_ context.Context, _ int64) error { return nil }

// recordingPublisher captures email jobs instead of talking to a broker.
type recordingPublisher struct {
	mu   sync.Mutex
	jobs []any
}

func (p *recordingPublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}
