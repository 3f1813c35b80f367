package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/vitalpath/vitalpath/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	if !req.Type.Valid() {
		return domain.Product{}, domain.ErrInvalidType
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Product{}, domain.ErrInvalidTitle
	}
	if req.PriceMinor <= 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "pln"
	}

	now := time.Now().UTC()
	product := domain.Product{
		ID:          s.genID.Generate(),
		Slug:        slug.Make(title),
		Type:        req.Type,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		PriceMinor:  req.PriceMinor,
		Currency:    currency,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &product); err != nil {
		return domain.Product{}, err
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductRequest) ([]domain.Product, error) {
	filter := domain.ListProductFilter{ActiveOnly: true}
	if t := strings.TrimSpace(req.Type); t != "" {
		productType := domain.ProductType(t)
		if !productType.Valid() {
			return nil, domain.ErrInvalidType
		}
		filter.Type = productType
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		products = append(products, *item)
	}
	return products, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return domain.Product{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetBySlug(ctx context.Context, value string) (domain.Product, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.Product{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindBySlug(ctx, s.db, value)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}
