package sink

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"
)

type ClickHouseSink struct {
	conn driver.Conn
	log  *logrus.Logger
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewClickHouseSink(cfg ClickHouseConfig, log *logrus.Logger) (*ClickHouseSink, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	if log == nil {
		log = logrus.New()
	}

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	log.Info("connected to ClickHouse swap sink")

	return &ClickHouseSink{conn: conn, log: log}, nil
}

func (c *ClickHouseSink) RecordSwap(ctx context.Context, rec SwapRecord) error {
	if c == nil {
		return nil
	}

	query := `
		INSERT INTO swap_builds (
			ts, user_address, input_mint, output_mint,
			in_amount, out_amount, min_out_amount,
			price_impact_bps, venue, venue_route_id,
			lp_fee_raw, slippage_bps
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		rec.Timestamp,
		rec.UserAddress,
		rec.InputMint,
		rec.OutputMint,
		rec.InAmount,
		rec.OutAmount,
		rec.MinOutAmount,
		rec.PriceImpactBps,
		string(rec.Venue),
		rec.VenueRouteID,
		rec.LPFeeRaw,
		rec.SlippageBps,
	)
	if err != nil {
		return fmt.Errorf("failed to insert swap record: %w", err)
	}
	return nil
}

func (c *ClickHouseSink) Close() error {
	if c == nil {
		return nil
	}
	return c.conn.Close()
}
