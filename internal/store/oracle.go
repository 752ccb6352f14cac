package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"ctsales/internal/types"

	_ "github.com/sijms/go-ora/v2"
)

// OracleConfig holds connection parameters for an Oracle-hosted copy of the
// sales table.
type OracleConfig struct {
	Host           string
	Port           string
	Service        string
	Username       string
	Password       string
	WalletLocation string
	Table          string
}

// dsn builds a properly encoded connection string for Oracle Autonomous
// Database. Wallet-based mTLS is used when a wallet location is configured.
func dsn(cfg OracleConfig) string {
	if cfg.WalletLocation != "" {
		return fmt.Sprintf(
			"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Service,
			url.PathEscape(cfg.WalletLocation))
	}

	return (&url.URL{
		Scheme:   "oracle",
		User:     url.UserPassword(cfg.Username, cfg.Password), // escapes automatically
		Host:     cfg.Host + ":" + cfg.Port,
		Path:     "/" + cfg.Service,
		RawQuery: "ssl=true", // ADB requires TCPS
	}).String()
}

// LoadFromOracle reads the sales table from Oracle and applies the same
// cleaning rules as the CSV loader: rows with an unusable location geometry
// or a missing amount or year are dropped.
func LoadFromOracle(ctx context.Context, cfg OracleConfig) (*Dataset, error) {
	db, err := sql.Open("oracle", dsn(cfg))
	if err != nil {
		return nil, &LoadError{Path: cfg.Table, Err: fmt.Errorf("open connection: %w", err)}
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, &LoadError{Path: cfg.Table, Err: fmt.Errorf("ping: %w", err)}
	}

	table := cfg.Table
	if table == "" {
		table = "REAL_ESTATE_SALES"
	}
	query := fmt.Sprintf(`
		SELECT Town, Residential_Type, Sale_Amount, List_Year, Address, Location
		FROM %s`, table)

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, &LoadError{Path: table, Err: fmt.Errorf("query sales: %w", err)}
	}
	defer rows.Close()

	var records []types.SaleRecord
	dropped := 0
	for rows.Next() {
		var town, resi, amount, year, address, location sql.NullString
		if err := rows.Scan(&town, &resi, &amount, &year, &address, &location); err != nil {
			return nil, &LoadError{Path: table, Err: fmt.Errorf("scan sale row: %w", err)}
		}

		m := pointRe.FindStringSubmatch(location.String)
		if m == nil {
			dropped++
			continue
		}
		lon, _ := parseAmount(m[1])
		lat, _ := parseAmount(m[2])

		amt, ok := parseAmount(amount.String)
		if !ok {
			dropped++
			continue
		}
		yr, ok := parseYear(year.String)
		if !ok {
			dropped++
			continue
		}

		records = append(records, types.SaleRecord{
			Town:            town.String,
			ResidentialType: resi.String,
			SaleAmount:      amt,
			ListYear:        yr,
			Address:         address.String,
			Lon:             lon,
			Lat:             lat,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, &LoadError{Path: table, Err: err}
	}

	if len(records) == 0 {
		return nil, &LoadError{Path: table, Err: fmt.Errorf("no valid rows after cleaning (%d dropped)", dropped)}
	}
	if dropped > 0 {
		slog.Debug("dropped unparseable rows", slog.Int("dropped", dropped), slog.Int("kept", len(records)))
	}

	return newDataset(records), nil
}
