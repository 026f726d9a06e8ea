// Package auth is the ambient ingress layer's API-key authentication,
// adapted from the teacher's auth.AuthService — bcrypt hashing carried
// through end to end (the teacher generates a bcrypt hash on create but
// never compares against it on authenticate; this rewrite fixes that).
package auth

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"lead-gateway/internal/persistence"
)

// Client is one API consumer of the ingress layer.
type Client struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	APIKeyHash string    `json:"-"`
}

type Service struct {
	db     *persistence.PostgresDB
	logger *zap.Logger
}

func NewService(db *persistence.PostgresDB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

func (s *Service) CreateClient(ctx context.Context, name, apiKey string) (*Client, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash api key: %w", err)
	}

	client := &Client{ID: uuid.New(), Name: name, APIKeyHash: string(hashed)}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, api_key_hash) VALUES ($1, $2, $3)`,
		client.ID, client.Name, client.APIKeyHash)
	if err != nil {
		return nil, fmt.Errorf("auth: insert client: %w", err)
	}
	return client, nil
}

// AuthenticateAPIKey checks apiKey against every stored client hash. This
// is O(clients) per request; fine at the scale an internal enrichment
// gateway runs at, and avoids needing a separate lookup key alongside the
// secret itself.
func (s *Service) AuthenticateAPIKey(ctx context.Context, apiKey string) (*Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, api_key_hash FROM clients`)
	if err != nil {
		return nil, fmt.Errorf("auth: list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.APIKeyHash); err != nil {
			return nil, fmt.Errorf("auth: scan client: %w", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: list clients: %w", err)
	}

	client, ok := matchClient(clients, apiKey)
	if !ok {
		return nil, fmt.Errorf("auth: invalid api key")
	}
	return client, nil
}

// matchClient is the pure comparison AuthenticateAPIKey delegates to, split
// out so the bcrypt-matching logic is testable without a database.
func matchClient(clients []Client, apiKey string) (*Client, bool) {
	for i := range clients {
		if bcrypt.CompareHashAndPassword([]byte(clients[i].APIKeyHash), []byte(apiKey)) == nil {
			return &clients[i], true
		}
	}
	return nil, false
}

func (s *Service) GetClientByID(ctx context.Context, clientID uuid.UUID) (*Client, error) {
	var c Client
	err := s.db.QueryRowContext(ctx, `SELECT id, name, api_key_hash FROM clients WHERE id = $1`, clientID).
		Scan(&c.ID, &c.Name, &c.APIKeyHash)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("auth: client not found")
	}
	if err != nil {
		return nil, fmt.Errorf("auth: get client: %w", err)
	}
	return &c, nil
}

// RequireAPIKey is the Fiber middleware guarding every enrichment route.
func (s *Service) RequireAPIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing API key"})
		}

		client, err := s.AuthenticateAPIKey(c.Context(), apiKey)
		if err != nil {
			s.logger.Warn("rejected request with invalid API key")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid API key"})
		}

		c.Locals("client", client)
		return c.Next()
	}
}

// GetClientFromContext recovers the authenticated client the middleware
// attached.
func GetClientFromContext(c *fiber.Ctx) (*Client, error) {
	client, ok := c.Locals("client").(*Client)
	if !ok {
		return nil, fmt.Errorf("auth: client not found in context")
	}
	return client, nil
}
