package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Length limits keep a redemption reply and a shop embed field within
// Discord's message limits.
const (
	MaxNameRunes        = 100
	MaxDescriptionRunes = 1024
	MaxPayloadRunes     = 1500
)

var (
	ErrUnknownItem = errors.New("unknown item")
	ErrInvalidItem = errors.New("invalid item")
)

// Item is a redeemable shop entry. Items are immutable once created.
type Item struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Payload     string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

type NewItem struct {
	Name        string
	Description string
	Price       int64
	Payload     string
}

// Store persists catalog items. ListItems must return insertion order and
// GetItem must return ErrUnknownItem when the id does not exist.
type Store interface {
	ListItems(ctx context.Context) ([]Item, error)
	AddItem(ctx context.Context, item NewItem) (Item, error)
	GetItem(ctx context.Context, id int64) (Item, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListItems(ctx context.Context) ([]Item, error) {
	return s.store.ListItems(ctx)
}

func (s *Service) GetItem(ctx context.Context, id int64) (Item, error) {
	return s.store.GetItem(ctx, id)
}

// AddItem validates and appends a new item. Authorization is the caller's job.
func (s *Service) AddItem(ctx context.Context, item NewItem) (Item, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Description = strings.TrimSpace(item.Description)
	if item.Name == "" {
		return Item{}, errors.Join(ErrInvalidItem, errors.New("name is required"))
	}
	if item.Price < 0 {
		return Item{}, errors.Join(ErrInvalidItem, errors.New("price must not be negative"))
	}
	for _, f := range []struct {
		field string
		value string
		max   int
	}{
		{"name", item.Name, MaxNameRunes},
		{"description", item.Description, MaxDescriptionRunes},
		{"payload", item.Payload, MaxPayloadRunes},
	} {
		if n := utf8.RuneCountInString(f.value); n > f.max {
			return Item{}, errors.Join(ErrInvalidItem, fmt.Errorf("%s is %d characters, at most %d allowed", f.field, n, f.max))
		}
	}
	return s.store.AddItem(ctx, item)
}
