// Package reference serves the geography and dealer lists used to populate
// report filters.
package reference

import (
	"context"
	"fmt"
	"strings"
)

// Atoll is an administrative atoll. Reports filter on its display name.
type Atoll struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Island belongs to one atoll.
type Island struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AtollID   string `json:"atollId"`
	AtollName string `json:"atollName"`
}

// Dealer is a registered collection agent.
type Dealer struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	IslandName string `json:"islandName,omitempty"`
	AtollName  string `json:"atollName,omitempty"`
	Status     string `json:"status,omitempty"`
}

// Repository reads reference lists.
type Repository interface {
	ListAtolls(ctx context.Context) ([]Atoll, error)
	ListIslands(ctx context.Context) ([]Island, error)
	ListDealers(ctx context.Context) ([]Dealer, error)
}

// Service provides reference lists.
type Service struct {
	repo Repository
}

// NewService creates a reference service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Atolls returns every atoll.
func (s *Service) Atolls(ctx context.Context) ([]Atoll, error) {
	atolls, err := s.repo.ListAtolls(ctx)
	if err != nil {
		return nil, fmt.Errorf("list atolls: %w", err)
	}
	return atolls, nil
}

// Islands returns the islands, optionally only those of the named atoll.
func (s *Service) Islands(ctx context.Context, atoll string) ([]Island, error) {
	islands, err := s.repo.ListIslands(ctx)
	if err != nil {
		return nil, fmt.Errorf("list islands: %w", err)
	}

	atoll = strings.TrimSpace(atoll)
	if atoll == "" {
		return islands, nil
	}
	out := make([]Island, 0, len(islands))
	for _, is := range islands {
		if strings.EqualFold(is.AtollName, atoll) {
			out = append(out, is)
		}
	}
	return out, nil
}

// Dealers returns every dealer.
func (s *Service) Dealers(ctx context.Context) ([]Dealer, error) {
	dealers, err := s.repo.ListDealers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list dealers: %w", err)
	}
	return dealers, nil
}
