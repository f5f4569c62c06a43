package model

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/badoux/checkmail"
	"github.com/lib/pq"
	"github.com/synacor/argon2id"

	"riverroom-server/pkg/db"
	"riverroom-server/pkg/token"
)

const passwordResetRequestTTL = time.Hour

const (
	tokenTypePasswordReset       = "password_reset"
	tokenTypeAccountVerification = "account_verification"
)

const playerColumns = `
players.id,
players.email,
players.display_name,
players.is_site_admin,
players.status,
players.password_hash,
players.created,
players.updated`

const pqDuplicateKeyErrorCode pq.ErrorCode = "23505"

// minPasswordLength is the fewest characters allowed in a password
const minPasswordLength = 6

// ErrInvalidEmailOrPassword is an error for an invalid email or password
var ErrInvalidEmailOrPassword = UserError("invalid email address and/or password")

// ErrDuplicateKey happens if a user tries to create a player with a taken email
var ErrDuplicateKey = errors.New("duplicate key constraint violation")

// ErrTokenExpired is an error if the token is no longer valid
var ErrTokenExpired = errors.New("token is expired")

// ErrAccountNotVerified is an error if the user tries to log in without being verified
var ErrAccountNotVerified = UserError("account not verified")

// PlayerStatus is the status of a player
type PlayerStatus string

// PlayerStatus constants
const (
	PlayerStatusCreated  PlayerStatus = "created"
	PlayerStatusVerified PlayerStatus = "verified"
	PlayerStatusBlocked  PlayerStatus = "blocked"
)

// Player is a record in the players table
type Player struct {
	ID           int64        `json:"id"`
	Email        string       `json:"-"`
	DisplayName  string       `json:"displayName"`
	IsSiteAdmin  bool         `json:"isSiteAdmin"`
	Status       PlayerStatus `json:"status"`
	passwordHash string
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

func getPlayerByRow(row db.Scanner) (*Player, error) {
	var player Player
	if err := row.Scan(&player.ID, &player.Email, &player.DisplayName, &player.IsSiteAdmin, &player.Status, &player.passwordHash, &player.Created, &player.Updated); err != nil {
		return nil, err
	}

	return &player, nil
}

// GetPlayerByID returns player based on the ID
func GetPlayerByID(ctx context.Context, id int64) (*Player, error) {
	const query = `
SELECT ` + playerColumns + `
FROM players
WHERE id = $1`

	row := db.Instance().QueryRowContext(ctx, query, id)
	return getPlayerByRow(row)
}

// GetPlayerByEmail will return a user by the email address
func GetPlayerByEmail(ctx context.Context, email string) (*Player, error) {
	const query = `
SELECT ` + playerColumns + `
FROM players
WHERE lower(email) = lower($1)`

	row := db.Instance().QueryRowContext(ctx, query, email)
	return getPlayerByRow(row)
}

// GetPlayerByEmailAndPassword will return a user if the email and password are valid
func GetPlayerByEmailAndPassword(ctx context.Context, email, password string) (*Player, error) {
	player, err := GetPlayerByEmail(ctx, email)
	if err != nil {
		if err == sql.ErrNoRows {
			// prevent timing attacks
			_ = argon2id.Compare("", "")
			return nil, ErrInvalidEmailOrPassword
		}

		return nil, err
	}

	if err := player.ValidatePassword(password); err != nil {
		return nil, err
	}

	if player.Status != PlayerStatusVerified {
		return nil, ErrAccountNotVerified
	}

	return player, nil
}

// ValidatePassword will validate a user's password
// Returns nil if the password is valid
func (p *Player) ValidatePassword(password string) error {
	if err := argon2id.Compare(p.passwordHash, password); err != nil {
		return ErrInvalidEmailOrPassword
	}

	return nil
}

// CreatePlayer creates a new player along with their wallet. The starting
// bankroll seeds the wallet so new accounts can sit down at a table.
func CreatePlayer(ctx context.Context, email, displayName, password string, startingBankroll int) (*Player, error) {
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, UserError("invalid email address")
	}

	if len(password) < minPasswordLength {
		return nil, UserError("password is too short")
	}

	hashPassword, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return nil, err
	}

	tx, err := db.Instance().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	const query = `
INSERT INTO players (email, display_name, password_hash)
VALUES ($1, $2, $3)
RETURNING ` + playerColumns

	row := tx.QueryRowContext(ctx, query, email, displayName, hashPassword)
	player, err := getPlayerByRow(row)
	if err != nil {
		rollback(tx)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqDuplicateKeyErrorCode {
			return nil, ErrDuplicateKey
		}

		return nil, err
	}

	const walletQuery = `
INSERT INTO wallets (player_id, balance)
VALUES ($1, $2)`
	if _, err := tx.ExecContext(ctx, walletQuery, player.ID, startingBankroll); err != nil {
		rollback(tx)
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return player, nil
}

// Save will persist any changes made to the user to the database
func (p *Player) Save(ctx context.Context) error {
	const query = `
UPDATE players
SET email = $1,
    password_hash = $2,
    display_name = $3,
    is_site_admin = $4,
    status = $5,
    updated = (NOW() AT TIME ZONE 'utc')
WHERE id = $6`

	_, err := db.Instance().ExecContext(ctx, query, p.Email, p.passwordHash, p.DisplayName, p.IsSiteAdmin, p.Status, p.ID)
	return err
}

// SetPassword will set a new password on the player instance
// Important: you must call Save() to persist this change
func (p *Player) SetPassword(password string) error {
	if len(password) < minPasswordLength {
		return UserError("password is too short")
	}

	newHash, err := argon2id.DefaultHashPassword(password)
	if err != nil {
		return err
	}

	p.passwordHash = newHash
	return nil
}

// SetIsSiteAdmin sets whether the player is a site admin
func (p *Player) SetIsSiteAdmin(ctx context.Context, isSiteAdmin bool) error {
	if p.IsSiteAdmin == isSiteAdmin {
		return nil
	}

	const query = `
UPDATE players
SET is_site_admin = $1, updated = (NOW() AT TIME ZONE 'UTC')
WHERE id = $2
RETURNING updated`

	var updated sql.NullTime
	if err := db.Instance().QueryRowContext(ctx, query, isSiteAdmin, p.ID).Scan(&updated); err != nil {
		return err
	}

	p.IsSiteAdmin = isSiteAdmin
	p.Updated = updated.Time
	return nil
}

// GetPlayers returns a list of players
func GetPlayers(ctx context.Context, offset int64, limit int) ([]*Player, error) {
	const query = `
SELECT ` + playerColumns + `
FROM players
ORDER BY id ASC
OFFSET $1
LIMIT $2`

	rows, err := db.Instance().QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	players := make([]*Player, 0)
	for rows.Next() {
		player, err := getPlayerByRow(rows)
		if err != nil {
			return nil, err
		}

		players = append(players, player)
	}

	return players, nil
}

// CreatePasswordResetRequest generates a new password request and returns the token
func (p *Player) CreatePasswordResetRequest(ctx context.Context) (string, error) {
	if err := p.expirePlayerTokens(ctx, tokenTypePasswordReset); err != nil {
		return "", err
	}

	return p.createPlayerToken(ctx, tokenTypePasswordReset)
}

// CreateAccountVerificationToken generates a new account verification token
func (p *Player) CreateAccountVerificationToken(ctx context.Context) (string, error) {
	if err := p.expirePlayerTokens(ctx, tokenTypeAccountVerification); err != nil {
		return "", err
	}

	return p.createPlayerToken(ctx, tokenTypeAccountVerification)
}

func (p *Player) createPlayerToken(ctx context.Context, tokenType string) (string, error) {
	const query = `
INSERT INTO player_tokens (token, player_id, type)
VALUES ($1, $2, $3)`

	playerToken, err := token.Generate(20)
	if err != nil {
		return "", err
	}

	if _, err := db.Instance().ExecContext(ctx, query, playerToken, p.ID, tokenType); err != nil {
		return "", err
	}

	return playerToken, nil
}

// expirePlayerTokens ensures all existing tokens of the type are disabled
func (p *Player) expirePlayerTokens(ctx context.Context, tokenType string) error {
	const query = `
UPDATE player_tokens
SET active = 'f'
WHERE player_id = $1 AND type = $2`

	_, err := db.Instance().ExecContext(ctx, query, p.ID, tokenType)
	return err
}

// ResetPassword will attempt to reset the player's password
func (p *Player) ResetPassword(ctx context.Context, newPassword, resetToken string) error {
	playerID, err := isPlayerTokenValid(ctx, resetToken, tokenTypePasswordReset, time.Now().In(time.UTC).Add(-1*passwordResetRequestTTL))
	if err != nil {
		return err
	}

	if playerID != p.ID {
		return ErrTokenExpired
	}

	if err := p.SetPassword(newPassword); err != nil {
		return err
	}

	if err := expireToken(ctx, resetToken); err != nil {
		return err
	}

	return p.Save(ctx)
}

// isPlayerTokenValid checks if the token is still valid
func isPlayerTokenValid(ctx context.Context, playerToken, expectedType string, createdAfter time.Time) (int64, error) {
	const query = `
SELECT player_id, type, created
FROM player_tokens
WHERE token = $1
  AND active`

	row := db.Instance().QueryRowContext(ctx, query, playerToken)

	var playerID int64
	var tokenType string
	var created time.Time
	if err := row.Scan(&playerID, &tokenType, &created); err != nil {
		return 0, ErrTokenExpired
	}

	if tokenType != expectedType || created.Before(createdAfter) {
		return 0, ErrTokenExpired
	}

	return playerID, nil
}

// VerifyAccount will verify the account if the token is valid
func VerifyAccount(ctx context.Context, verifyToken string) error {
	playerID, err := isPlayerTokenValid(ctx, verifyToken, tokenTypeAccountVerification, time.Time{})
	if err != nil {
		return err
	}

	player, err := GetPlayerByID(ctx, playerID)
	if err != nil {
		return err
	}

	if player.Status != PlayerStatusCreated {
		return errors.New("player cannot be verified")
	}

	if err := expireToken(ctx, verifyToken); err != nil {
		return err
	}

	player.Status = PlayerStatusVerified
	return player.Save(ctx)
}

func expireToken(ctx context.Context, t string) error {
	const query = `
UPDATE player_tokens
SET active = 'f'
WHERE token = $1`

	_, err := db.Instance().ExecContext(ctx, query, t)
	return err
}

func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
