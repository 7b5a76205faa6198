package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stellar/anchor-platform-backend/db"
)

// Asset is an entry of the anchor's asset catalog. SignificantDecimals is the
// authoritative precision for all amounts denominated in the asset.
type Asset struct {
	ID                  string     `json:"id" db:"id"`
	Code                string     `json:"code" db:"code"`
	Issuer              string     `json:"issuer" db:"issuer"`
	SignificantDecimals int32      `json:"significant_decimals" db:"significant_decimals"`
	CreatedAt           *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// IsNative returns true if the asset is the native asset (XLM).
func (a Asset) IsNative() bool {
	return strings.TrimSpace(a.Issuer) == "" &&
		(a.Code == "XLM" || a.Code == "NATIVE")
}

// Equals returns true if the asset is the same as the other asset.
func (a Asset) Equals(other Asset) bool {
	if a.IsNative() && other.IsNative() {
		return true
	}
	return a.Code == other.Code && strings.EqualFold(a.Issuer, other.Issuer)
}

type AssetModel struct {
	dbConnectionPool db.DBConnectionPool
}

func (a *AssetModel) Get(ctx context.Context, id string) (*Asset, error) {
	const query = `
		SELECT
		    *
		FROM
		    assets a
		WHERE
		    a.id = $1
		`

	var asset Asset
	err := a.dbConnectionPool.GetContext(ctx, &asset, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying asset ID %s: %w", id, err)
	}
	return &asset, nil
}

// GetByCodeAndIssuer returns asset filtering by code and issuer.
func (a *AssetModel) GetByCodeAndIssuer(ctx context.Context, code, issuer string) (*Asset, error) {
	const query = `
		SELECT
		    *
		FROM
		    assets a
		WHERE
		    a.code = $1
		    AND a.issuer = $2
		`

	var asset Asset
	err := a.dbConnectionPool.GetContext(ctx, &asset, query, code, issuer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying asset with code %s and issuer %s: %w", code, issuer, err)
	}
	return &asset, nil
}
