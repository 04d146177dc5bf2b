package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/geocode"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/repository"
)

// stubRepo реализует в памяти контракт PostgresRepository.
type stubRepo struct {
	mu          sync.Mutex
	users       map[string]*model.User
	stock       model.CompostStock
	pickups     map[string]*model.Pickup
	orders      map[string]*model.Order
	items       map[string]*model.InventoryItem
	rewards     map[string]*model.Reward
	redemptions []model.Redemption
	events      []model.StatusEvent
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:   make(map[string]*model.User),
		pickups: make(map[string]*model.Pickup),
		orders:  make(map[string]*model.Order),
		items:   make(map[string]*model.InventoryItem),
		rewards: make(map[string]*model.Reward),
	}
}

func (r *stubRepo) CreateUser(_ context.Context, u model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("%w: %s", repository.ErrUserExists, u.Email)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	r.users[u.ID] = &u
	cp := u
	return &cp, nil
}

func (r *stubRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *stubRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubRepo) UpsertAdmin(_ context.Context, u model.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			existing.Role = model.RoleAdmin
			existing.Name = u.Name
			existing.PasswordHash = u.PasswordHash
			return false, nil
		}
	}
	u.ID = uuid.NewString()
	u.Role = model.RoleAdmin
	r.users[u.ID] = &u
	return true, nil
}

func (r *stubRepo) GetStock(_ context.Context) (model.CompostStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stock, nil
}

func (r *stubRepo) UpdateStock(_ context.Context, fn func(model.CompostStock) (model.CompostStock, error)) (model.CompostStock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next, err := fn(r.stock)
	if err != nil {
		return model.CompostStock{}, err
	}
	next.Version = r.stock.Version + 1
	r.stock = next
	return next, nil
}

func (r *stubRepo) CreatePickup(_ context.Context, p model.Pickup) (*model.Pickup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	r.pickups[p.ID] = &p
	cp := p
	return &cp, nil
}

func (r *stubRepo) GetPickup(_ context.Context, id string) (*model.Pickup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pickups[id]
	if !ok {
		return nil, repository.ErrPickupNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubRepo) ListPickupsByOwner(_ context.Context, ownerID string) ([]model.Pickup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Pickup, 0)
	for _, p := range r.pickups {
		if p.OwnerID == ownerID {
			res = append(res, *p)
		}
	}
	return res, nil
}

func (r *stubRepo) ListPickups(_ context.Context) ([]model.Pickup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Pickup, 0, len(r.pickups))
	for _, p := range r.pickups {
		res = append(res, *p)
	}
	return res, nil
}

func (r *stubRepo) TransitionPickup(_ context.Context, id string, fn repository.PickupTransitionFunc) (lifecycle.PickupOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.pickups[id]
	if !ok {
		return lifecycle.PickupOutcome{}, repository.ErrPickupNotFound
	}

	var owner *model.User
	if u, ok := r.users[p.OwnerID]; ok {
		cp := *u
		owner = &cp
	}

	out, err := fn(*p, r.stock, owner)
	if err != nil || out.NoOp {
		return out, err
	}

	if out.StockChanged {
		out.Stock.Version = r.stock.Version + 1
		r.stock = out.Stock
	}
	if out.Owner != nil && out.PointsCredited != 0 {
		r.users[out.Owner.ID].RewardPoints = out.Owner.RewardPoints
	}
	r.events = append(r.events, out.Events...)
	updated := out.Pickup
	r.pickups[id] = &updated

	return out, nil
}

func (r *stubRepo) CreateOrder(_ context.Context, o model.Order) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	r.orders[o.ID] = &o
	cp := o
	return &cp, nil
}

func (r *stubRepo) GetOrder(_ context.Context, id string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubRepo) ListOrdersByFarmer(_ context.Context, farmerID string) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Order, 0)
	for _, o := range r.orders {
		if o.FarmerID == farmerID {
			res = append(res, *o)
		}
	}
	return res, nil
}

func (r *stubRepo) ListOrders(_ context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		res = append(res, *o)
	}
	return res, nil
}

func (r *stubRepo) ListOrdersWithoutCoordinates(_ context.Context) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Order, 0)
	for _, o := range r.orders {
		if o.Coordinates == nil {
			res = append(res, *o)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *stubRepo) SetOrderCoordinates(_ context.Context, id string, point model.GeoPoint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok || o.Coordinates != nil {
		return false, nil
	}
	p := point
	o.Coordinates = &p
	return true, nil
}

func (r *stubRepo) TransitionOrder(_ context.Context, id string, fn repository.OrderTransitionFunc) (lifecycle.OrderOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return lifecycle.OrderOutcome{}, repository.ErrOrderNotFound
	}

	out, err := fn(*o, r.stock)
	if err != nil || out.NoOp {
		return out, err
	}

	if out.StockChanged {
		out.Stock.Version = r.stock.Version + 1
		r.stock = out.Stock
	}
	r.events = append(r.events, out.Events...)
	updated := out.Order
	r.orders[id] = &updated

	return out, nil
}

func (r *stubRepo) ListInventory(_ context.Context) ([]model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.InventoryItem, 0, len(r.items))
	for _, it := range r.items {
		res = append(res, *it)
	}
	return res, nil
}

func (r *stubRepo) CreateInventoryItem(_ context.Context, it model.InventoryItem) (*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it.ID = uuid.NewString()
	r.items[it.ID] = &it
	cp := it
	return &cp, nil
}

func (r *stubRepo) UpdateInventoryItem(_ context.Context, id string, fn func(*model.InventoryItem) error) (*model.InventoryItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok {
		return nil, repository.ErrItemNotFound
	}
	cp := *it
	if err := fn(&cp); err != nil {
		return nil, err
	}
	r.items[id] = &cp
	res := cp
	return &res, nil
}

func (r *stubRepo) DeleteInventoryItem(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return repository.ErrItemNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *stubRepo) ListRewards(_ context.Context) ([]model.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Reward, 0, len(r.rewards))
	for _, rw := range r.rewards {
		res = append(res, *rw)
	}
	return res, nil
}

func (r *stubRepo) CreateReward(_ context.Context, rw model.Reward) (*model.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rw.ID == "" {
		rw.ID = uuid.NewString()
	}
	r.rewards[rw.ID] = &rw
	cp := rw
	return &cp, nil
}

func (r *stubRepo) UpdateReward(_ context.Context, id string, fn func(*model.Reward) error) (*model.Reward, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rw, ok := r.rewards[id]
	if !ok {
		return nil, repository.ErrRewardNotFound
	}
	cp := *rw
	if err := fn(&cp); err != nil {
		return nil, err
	}
	r.rewards[id] = &cp
	res := cp
	return &res, nil
}

func (r *stubRepo) DeleteReward(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rewards[id]; !ok {
		return repository.ErrRewardNotFound
	}
	delete(r.rewards, id)
	return nil
}

func (r *stubRepo) Redeem(_ context.Context, userID, rewardID string, fn repository.RedeemFunc) (lifecycle.RedemptionOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rw, ok := r.rewards[rewardID]
	if !ok {
		return lifecycle.RedemptionOutcome{}, repository.ErrRewardNotFound
	}
	u, ok := r.users[userID]
	if !ok {
		return lifecycle.RedemptionOutcome{}, repository.ErrUserNotFound
	}

	out, err := fn(*u, *rw)
	if err != nil {
		return lifecycle.RedemptionOutcome{}, err
	}
	u.RewardPoints = out.User.RewardPoints
	out.Redemption.ID = uuid.NewString()
	r.redemptions = append(r.redemptions, out.Redemption)

	return out, nil
}

func (r *stubRepo) ListRedemptionsByUser(_ context.Context, userID string) ([]model.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.Redemption, 0)
	for _, rd := range r.redemptions {
		if rd.UserID == userID {
			res = append(res, rd)
		}
	}
	return res, nil
}

func (r *stubRepo) ListRedemptions(_ context.Context) ([]model.Redemption, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Redemption(nil), r.redemptions...), nil
}

func (r *stubRepo) ListStatusEvents(_ context.Context, aggregate model.Aggregate, id string) ([]model.StatusEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := make([]model.StatusEvent, 0)
	for _, e := range r.events {
		if e.Aggregate == aggregate && e.AggregateID == id {
			res = append(res, e)
		}
	}
	return res, nil
}

type stubTokens struct{}

func (stubTokens) IssueToken(userID string, role model.Role) (string, error) {
	return "token-" + userID + "-" + string(role), nil
}

type stubGeocoder struct {
	mu       sync.Mutex
	point    model.GeoPoint
	lookup   geocode.Result
	lookErr  error
	resolved []string
}

func (g *stubGeocoder) Lookup(_ context.Context, _ string) (geocode.Result, error) {
	return g.lookup, g.lookErr
}

func (g *stubGeocoder) Resolve(_ context.Context, address string) model.GeoPoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved = append(g.resolved, address)
	return g.point
}

func (g *stubGeocoder) ResolveDelivery(ctx context.Context, address string) *model.GeoPoint {
	if address == "" || address == geocode.NotProvided {
		return nil
	}
	p := g.Resolve(ctx, address)
	return &p
}
