// Package service реализует бизнес-логику сервиса Waste2Wealth: регистрацию и вход,
// заявки на вывоз, заказы компоста, каталог, обмен баллов и построение маршрутов.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/geocode"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/lifecycle"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/metrics"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/repository"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/route"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/validation"
)

// ErrInvalidCredentials возвращается при неверном e-mail или пароле.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	CreateUser(ctx context.Context, u model.User) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpsertAdmin(ctx context.Context, u model.User) (bool, error)

	GetStock(ctx context.Context) (model.CompostStock, error)
	UpdateStock(ctx context.Context, fn func(model.CompostStock) (model.CompostStock, error)) (model.CompostStock, error)

	CreatePickup(ctx context.Context, p model.Pickup) (*model.Pickup, error)
	GetPickup(ctx context.Context, id string) (*model.Pickup, error)
	ListPickupsByOwner(ctx context.Context, ownerID string) ([]model.Pickup, error)
	ListPickups(ctx context.Context) ([]model.Pickup, error)
	TransitionPickup(ctx context.Context, id string, fn repository.PickupTransitionFunc) (lifecycle.PickupOutcome, error)

	CreateOrder(ctx context.Context, o model.Order) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrdersByFarmer(ctx context.Context, farmerID string) ([]model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	ListOrdersWithoutCoordinates(ctx context.Context) ([]model.Order, error)
	SetOrderCoordinates(ctx context.Context, id string, point model.GeoPoint) (bool, error)
	TransitionOrder(ctx context.Context, id string, fn repository.OrderTransitionFunc) (lifecycle.OrderOutcome, error)

	ListInventory(ctx context.Context) ([]model.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, it model.InventoryItem) (*model.InventoryItem, error)
	UpdateInventoryItem(ctx context.Context, id string, fn func(*model.InventoryItem) error) (*model.InventoryItem, error)
	DeleteInventoryItem(ctx context.Context, id string) error

	ListRewards(ctx context.Context) ([]model.Reward, error)
	CreateReward(ctx context.Context, rw model.Reward) (*model.Reward, error)
	UpdateReward(ctx context.Context, id string, fn func(*model.Reward) error) (*model.Reward, error)
	DeleteReward(ctx context.Context, id string) error

	Redeem(ctx context.Context, userID, rewardID string, fn repository.RedeemFunc) (lifecycle.RedemptionOutcome, error)
	ListRedemptionsByUser(ctx context.Context, userID string) ([]model.Redemption, error)
	ListRedemptions(ctx context.Context) ([]model.Redemption, error)

	ListStatusEvents(ctx context.Context, aggregate model.Aggregate, id string) ([]model.StatusEvent, error)
}

// TokenIssuer выпускает токены доступа.
type TokenIssuer interface {
	IssueToken(userID string, role model.Role) (string, error)
}

// Geocoder переводит адреса в координаты.
type Geocoder interface {
	Lookup(ctx context.Context, address string) (geocode.Result, error)
	Resolve(ctx context.Context, address string) model.GeoPoint
	ResolveDelivery(ctx context.Context, address string) *model.GeoPoint
}

// RouteOptimizer строит маршрут объезда.
type RouteOptimizer interface {
	Optimize(ctx context.Context, locations []route.Location) (route.Plan, error)
}

// Deps содержит зависимости сервиса. Все поля, кроме Tokens и Geocoder, необязательны.
type Deps struct {
	Tokens       TokenIssuer
	Geocoder     Geocoder
	Routes       RouteOptimizer
	Policy       lifecycle.PickupPolicy
	BackfillRate float64
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
}

// Service содержит бизнес-логику сервиса Waste2Wealth.
type Service struct {
	repo         Repository
	tokens       TokenIssuer
	geocoder     Geocoder
	routes       RouteOptimizer
	policy       lifecycle.PickupPolicy
	backfillRate float64
	logger       *zap.Logger
	metrics      *metrics.Metrics
	now          func() time.Time
}

// NewService создаёт новый сервис с указанным репозиторием и зависимостями.
func NewService(repo Repository, deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	backfillRate := deps.BackfillRate
	if backfillRate <= 0 {
		backfillRate = 1
	}
	routes := deps.Routes
	if routes == nil {
		routes = route.NewOptimizer(nil, 0, logger, deps.Metrics)
	}

	return &Service{
		repo:         repo,
		tokens:       deps.Tokens,
		geocoder:     deps.Geocoder,
		routes:       routes,
		policy:       deps.Policy,
		backfillRate: backfillRate,
		logger:       logger,
		metrics:      deps.Metrics,
		now:          time.Now,
	}
}

func (s *Service) meta(actorID string) lifecycle.Meta {
	return lifecycle.Meta{ActorID: actorID, Now: s.now().UTC()}
}

// RegisterInput содержит данные для регистрации пользователя.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  string
	Role     model.Role
}

// RegisterUser регистрирует домохозяйство или фермера и возвращает токен доступа.
// Роль администратора через регистрацию получить нельзя.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	if in.Role == "" {
		in.Role = model.RoleHousehold
	}

	err := validation.First(
		validation.Required("name", in.Name),
		validation.MaxLength("name", in.Name, 200),
		validation.Email("email", strings.TrimSpace(in.Email)),
		validation.Password("password", in.Password),
	)
	if err != nil {
		return nil, "", err
	}
	if in.Role != model.RoleHousehold && in.Role != model.RoleFarmer {
		return nil, "", &validation.ValidationError{Field: "role", Reason: "must be household or farmer"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.CreateUser(ctx, model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        validation.NormalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
		PasswordHash: hash,
		Role:         in.Role,
	})
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.IssueToken(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return u, token, nil
}

// AuthenticateUser проверяет e-mail и пароль и возвращает пользователя с токеном доступа.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*model.User, string, error) {
	u, err := s.repo.GetUserByEmail(ctx, validation.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueToken(u.ID, u.Role)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return u, token, nil
}

// Profile возвращает профиль пользователя вместе с балансом баллов.
func (s *Service) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

// CreateAdmin создаёт администратора или повышает существующего пользователя.
// Возвращает true, если учётная запись создана.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (bool, error) {
	err := validation.First(
		validation.Required("name", name),
		validation.Email("email", strings.TrimSpace(email)),
		validation.Password("password", password),
	)
	if err != nil {
		return false, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.UpsertAdmin(ctx, model.User{
		Name:         strings.TrimSpace(name),
		Email:        validation.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("admin account ensured", zap.String("email", validation.NormalizeEmail(email)), zap.Bool("created", created))
	return created, nil
}
