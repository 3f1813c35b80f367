package domain

import (
	"context"
	"errors"
)

type CreateProductRequest struct {
	Type        ProductType
	Title       string
	Description string
	PriceMinor  int64
	Currency    string
}

type ListProductRequest struct {
	Type string
}

type ListProductFilter struct {
	Type       ProductType
	ActiveOnly bool
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	List(context.Context, ListProductRequest) ([]Product, error)
	GetByID(context.Context, string) (Product, error)
	GetBySlug(context.Context, string) (Product, error)
}

var (
	ErrInvalidType  = errors.New("invalid_type")
	ErrInvalidTitle = errors.New("invalid_title")
	ErrInvalidPrice = errors.New("invalid_price")
	ErrInvalidID    = errors.New("invalid_id")
	ErrNotFound     = errors.New("not_found")
)
