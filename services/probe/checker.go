package probe

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/paulokuong/airflow-run/models"
)

// Checker dials the backing services directly to verify they accept
// connections before any container that needs them is dispatched.
type Checker struct {
	logger   *zap.Logger
	attempts int
	baseWait time.Duration
}

func NewChecker(logger *zap.Logger) *Checker {
	return &Checker{
		logger:   logger,
		attempts: DefaultAttempts,
		baseWait: time.Second,
	}
}

// CheckMetastore verifies the metastore accepts connections with the
// configured credentials.
func (c *Checker) CheckMetastore(ctx context.Context, spec models.ServiceSpec) error {
	dsn := metastoreProbeDSN(spec)
	return retry(ctx, c.logger, string(models.ServicePostgreSQL), c.attempts, c.baseWait, func() error {
		return pingMetastore(ctx, dsn)
	})
}

func pingMetastore(ctx context.Context, dsn string) error {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("parse metastore dsn: %w", err)
	}
	poolCfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("open metastore pool: %w", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping metastore: %w", err)
	}
	return nil
}

// CheckBroker verifies the broker accepts connections on the configured
// virtual host, including opening a channel.
func (c *Checker) CheckBroker(ctx context.Context, spec models.ServiceSpec) error {
	u := brokerProbeURL(spec)
	return retry(ctx, c.logger, string(models.ServiceRabbitMQ), c.attempts, c.baseWait, func() error {
		return dialBroker(u)
	})
}

func dialBroker(url string) error {
	conn, err := amqp.Dial(url)
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open broker channel: %w", err)
	}
	return ch.Close()
}

func metastoreProbeDSN(spec models.ServiceSpec) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(spec.Username, spec.Password),
		Host:     net.JoinHostPort(spec.Host, strconv.Itoa(spec.Port)),
		Path:     "/postgres",
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func brokerProbeURL(spec models.ServiceSpec) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(spec.Username, spec.Password),
		Host:   net.JoinHostPort(spec.Host, strconv.Itoa(spec.Port)),
		Path:   "/" + spec.VirtualHost,
	}
	return u.String()
}
