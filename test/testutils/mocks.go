// Package testutils provides mock implementations for testing
package testutils

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/recipemanager/server/internal/domain/contact"
	"github.com/recipemanager/server/internal/domain/shared"
	"github.com/recipemanager/server/internal/domain/user"
	"github.com/recipemanager/server/internal/ports/outbound"
	"github.com/stretchr/testify/mock"
)

// MockTokenService provides a mock implementation of TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Issue(ctx context.Context, u *user.User) (*outbound.IssuedToken, error) {
	args := m.Called(ctx, u)
	if token, ok := args.Get(0).(*outbound.IssuedToken); ok {
		return token, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Verify(ctx context.Context, token string) (*outbound.TokenClaims, error) {
	args := m.Called(ctx, token)
	if claims, ok := args.Get(0).(*outbound.TokenClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTokenService) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// MockNotifier provides a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyContact(ctx context.Context, msg *contact.Message) error {
	return m.Called(ctx, msg).Error(0)
}

// MockRecipeSource provides a mock implementation of RecipeSource
type MockRecipeSource struct {
	mock.Mock
}

func (m *MockRecipeSource) ListIngredients(ctx context.Context) ([]outbound.SourceIngredient, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]outbound.SourceIngredient)
	return items, args.Error(1)
}

func (m *MockRecipeSource) MealsByCategory(ctx context.Context, category string) ([]outbound.SourceMealRef, error) {
	args := m.Called(ctx, category)
	refs, _ := args.Get(0).([]outbound.SourceMealRef)
	return refs, args.Error(1)
}

func (m *MockRecipeSource) LookupMeal(ctx context.Context, id string) (*outbound.SourceMeal, error) {
	args := m.Called(ctx, id)
	meal, _ := args.Get(0).(*outbound.SourceMeal)
	return meal, args.Error(1)
}

// MockStorage is an in-memory StorageService that records what it holds.
// Set FailUpload to make every upload fail.
type MockStorage struct {
	mu         sync.Mutex
	objects    map[string][]byte
	deleted    []string
	FailUpload error
}

// NewMockStorage creates an empty in-memory storage
func NewMockStorage() *MockStorage {
	return &MockStorage{objects: make(map[string][]byte)}
}

func (s *MockStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if s.FailUpload != nil {
		return "", s.FailUpload
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = buf.Bytes()
	return "/uploads/" + key, nil
}

func (s *MockStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

// Keys returns the keys currently stored
func (s *MockStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// Deleted returns every key passed to Delete
func (s *MockStorage) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// RecordingPublisher collects published events
type RecordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *RecordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// Names returns the names of the published events in order
func (p *RecordingPublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, len(p.events))
	for i, e := range p.events {
		names[i] = e.EventName()
	}
	return names
}

var (
	_ outbound.TokenService   = (*MockTokenService)(nil)
	_ outbound.Notifier       = (*MockNotifier)(nil)
	_ outbound.RecipeSource   = (*MockRecipeSource)(nil)
	_ outbound.StorageService = (*MockStorage)(nil)
	_ outbound.EventPublisher = (*RecordingPublisher)(nil)
)
