package container

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/psims/scholar-portal/config"
	"github.com/psims/scholar-portal/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client

	jwtManager *helpers.JWTManager

	rabbitPub *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)              { cfg = c }
func GetConfig() *config.Config               { return cfg }
func SetLogger(l *logrus.Logger)              { logger = l }
func GetLogger() *logrus.Logger               { return logger }
func SetPGPool(p *pgxpool.Pool)               { pgPool = p }
func GetPGPool() *pgxpool.Pool                { return pgPool }
func SetRedis(r *redis.Client)                { redisClient = r }
func GetRedis() *redis.Client                 { return redisClient }
func SetJWT(m *helpers.JWTManager)            { jwtManager = m }
func GetJWT() *helpers.JWTManager             { return jwtManager }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
