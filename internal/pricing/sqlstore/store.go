// Package sqlstore reads observed prices from the SQL tables written by the
// catalog scraper (price_stats and dynamic_pricing).
package sqlstore

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"xorm.io/xorm"

	"github.com/xtding233/enhance-cost/internal/pricing"
)

// PriceStat is a row of the rolled-up statistics table.
type PriceStat struct {
	ItemID         string   `xorm:"'item_id' varchar(32) index"`
	ItemName       string   `xorm:"'item_name' varchar(128)"`
	UpgradeType    int      `xorm:"'upgrade_type'"`
	UpgradeSubtype string   `xorm:"'upgrade_subtype' varchar(16)"`
	FromStar       int      `xorm:"'from_star'"`
	ToStar         int      `xorm:"'to_star'"`
	Timeframe      string   `xorm:"'timeframe' varchar(4)"`
	LastTsUTC      string   `xorm:"'last_ts_utc' varchar(32)"`
	LastClose      *float64 `xorm:"'last_close'"`
	AllTimeLow     *float64 `xorm:"'all_time_low'"`
	AllTimeHigh    *float64 `xorm:"'all_time_high'"`
	Samples        int      `xorm:"'samples'"`
}

func (PriceStat) TableName() string { return "price_stats" }

// DynamicPrice is one raw observation row.
type DynamicPrice struct {
	ID               int64    `xorm:"pk autoincr 'id'"`
	TsUTC            string   `xorm:"'ts_utc' varchar(32) index"`
	ItemID           string   `xorm:"'item_id' varchar(32) index"`
	ItemName         string   `xorm:"'item_name' varchar(128)"`
	UpgradeType      int      `xorm:"'upgrade_type'"`
	UpgradeSubtype   string   `xorm:"'upgrade_subtype' varchar(16)"`
	FromStar         int      `xorm:"'from_star'"`
	ToStar           int      `xorm:"'to_star'"`
	ClosePrice       *float64 `xorm:"'close_price'"`
	LowestPrice      *float64 `xorm:"'lowest_price'"`
	HighestPrice     *float64 `xorm:"'highest_price'"`
	EnhancementCount *float64 `xorm:"'enhancement_count'"`
	Timeframe        string   `xorm:"'timeframe' varchar(4)"`
	URL              string   `xorm:"'url' varchar(255)"`
}

func (DynamicPrice) TableName() string { return "dynamic_pricing" }

// Store is a pricing.Provider over a SQL database.
type Store struct {
	engine *xorm.Engine
}

// Open connects with the given driver and DSN (e.g. "mysql",
// "user:pass@tcp(host:3306)/prices?parseTime=true").
func Open(driver, dsn string) (*Store, error) {
	engine, err := xorm.NewEngine(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return &Store{engine: engine}, nil
}

// Close closes the engine.
func (s *Store) Close() error { return s.engine.Close() }

// Sync creates or migrates both tables.
func (s *Store) Sync() error {
	return s.engine.Sync(new(PriceStat), new(DynamicPrice))
}

// kindFilter is the WHERE fragment selecting one upgrade kind.
func kindFilter(kind pricing.Kind) (string, []interface{}) {
	if kind.Type == pricing.ToolUse {
		return "upgrade_type = ? AND upgrade_subtype = ?", []interface{}{int(pricing.ToolUse), pricing.Subtype(kind.Tool)}
	}
	return "upgrade_type = ? AND from_star = ?", []interface{}{int(pricing.Reinforce), kind.Level}
}

// Price implements pricing.Provider: the last close of tf from price_stats,
// else the latest raw close of any timeframe. Levels fall back only when tf
// has no level closes for the item at all, so one estimate never mixes
// timeframes; tools fall back individually.
func (s *Store) Price(ctx context.Context, item string, kind pricing.Kind, tf pricing.Timeframe) (float64, bool, error) {
	cond, args := kindFilter(kind)

	var st PriceStat
	has, err := s.engine.Context(ctx).
		Where("item_id = ? AND timeframe = ? AND last_close IS NOT NULL", item, string(tf)).
		And(cond, args...).
		Get(&st)
	if err != nil {
		return 0, false, fmt.Errorf("query price_stats: %w", err)
	}
	if has && st.LastClose != nil {
		return *st.LastClose, true, nil
	}

	if kind.Type == pricing.Reinforce {
		n, err := s.engine.Context(ctx).
			Where("item_id = ? AND timeframe = ? AND upgrade_type = ? AND last_close IS NOT NULL",
				item, string(tf), int(pricing.Reinforce)).
			Count(new(PriceStat))
		if err != nil {
			return 0, false, fmt.Errorf("query price_stats: %w", err)
		}
		if n > 0 {
			return 0, false, nil
		}
	}

	var dp DynamicPrice
	has, err = s.engine.Context(ctx).
		Where("item_id = ? AND close_price IS NOT NULL", item).
		And(cond, args...).
		Desc("ts_utc").
		Get(&dp)
	if err != nil {
		return 0, false, fmt.Errorf("query dynamic_pricing: %w", err)
	}
	if has && dp.ClosePrice != nil {
		return *dp.ClosePrice, true, nil
	}
	return 0, false, nil
}

// Record appends a raw observation row.
func (s *Store) Record(ctx context.Context, item, name string, kind pricing.Kind, tf pricing.Timeframe, price float64, at time.Time) error {
	if !kind.Valid() {
		return fmt.Errorf("sqlstore: invalid kind %s", kind)
	}
	_, err := s.engine.Context(ctx).Insert(observationRow(item, name, kind, tf, price, at))
	return err
}

func observationRow(item, name string, kind pricing.Kind, tf pricing.Timeframe, price float64, at time.Time) *DynamicPrice {
	row := &DynamicPrice{
		TsUTC:       at.UTC().Format(time.RFC3339),
		ItemID:      item,
		ItemName:    name,
		UpgradeType: int(kind.Type),
		ClosePrice:  &price,
		Timeframe:   string(tf),
		URL:         pricing.CatalogURL(item, kind),
	}
	if kind.Type == pricing.ToolUse {
		row.UpgradeSubtype = pricing.Subtype(kind.Tool)
	} else {
		row.FromStar, row.ToStar = kind.Level, kind.Level+1
	}
	return row
}
