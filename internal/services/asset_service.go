package services

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stellar/anchor-platform-backend/internal/data"
)

// AssetService resolves asset identifiers in the SEP-38 Asset Identification
// Format (e.g. "stellar:USDC:GA...", "stellar:native", "iso4217:USD") against
// the anchor's asset catalog.
type AssetService interface {
	GetAssetByIdentifier(ctx context.Context, identifier string) (*data.Asset, error)
}

// NewStellarAssetIdentifier builds a stellar asset identifier using the
// [Asset Identification Format](https://stellar.org/protocol/sep-38#asset-identification-format).
func NewStellarAssetIdentifier(assetCode, assetIssuer string) string {
	assetIssuer = strings.TrimSpace(assetIssuer)
	if assetIssuer != "" {
		assetIssuer = ":" + assetIssuer
	}
	return fmt.Sprintf("stellar:%s%s", strings.TrimSpace(assetCode), assetIssuer)
}

// ParseAssetIdentifier splits an asset identifier into schema, code and
// issuer. The issuer is empty for native and off-chain (iso4217) assets.
func ParseAssetIdentifier(identifier string) (schema, code, issuer string, err error) {
	parts := strings.Split(identifier, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", "", "", fmt.Errorf("invalid asset identifier %q", identifier)
	}

	schema = parts[0]
	if schema != "stellar" && schema != "iso4217" {
		return "", "", "", fmt.Errorf("unsupported asset schema %q", schema)
	}

	code = parts[1]
	if code == "" {
		return "", "", "", fmt.Errorf("invalid asset identifier %q", identifier)
	}
	if code == "native" {
		code = "XLM"
	}

	if len(parts) == 3 {
		issuer = parts[2]
	}
	return schema, code, issuer, nil
}

// CatalogAssetService is the database-backed AssetService with a
// read-through LRU cache. The catalog is read-only at runtime, so cached
// entries never need invalidation beyond LRU eviction.
type CatalogAssetService struct {
	assetModel *data.AssetModel
	cache      *lru.Cache[string, *data.Asset]
}

const assetCacheSize = 128

func NewCatalogAssetService(models *data.Models) (*CatalogAssetService, error) {
	cache, err := lru.New[string, *data.Asset](assetCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating asset cache: %w", err)
	}
	return &CatalogAssetService{assetModel: models.Assets, cache: cache}, nil
}

func (s *CatalogAssetService) GetAssetByIdentifier(ctx context.Context, identifier string) (*data.Asset, error) {
	if asset, ok := s.cache.Get(identifier); ok {
		return asset, nil
	}

	// A malformed identifier cannot name a catalog asset, so it surfaces the
	// same way an unknown one does.
	_, code, issuer, err := ParseAssetIdentifier(identifier)
	if err != nil {
		return nil, fmt.Errorf("parsing asset identifier: %v: %w", err, data.ErrRecordNotFound)
	}

	asset, err := s.assetModel.GetByCodeAndIssuer(ctx, code, issuer)
	if err != nil {
		return nil, fmt.Errorf("resolving asset %q: %w", identifier, err)
	}

	s.cache.Add(identifier, asset)
	return asset, nil
}

var _ AssetService = (*CatalogAssetService)(nil)
