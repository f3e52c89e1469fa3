package container

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/authmify/config"
	"github.com/oksasatya/authmify/internal/domain/repository"
	"github.com/oksasatya/authmify/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	userRepo    repository.UserRepository
	redisClient *redis.Client

	jwtManager *helpers.JWTManager
	hasher     *helpers.PasswordHasher

	rabbitPub *helpers.RabbitPublisher
)

func SetConfig(c *config.Config)                  { cfg = c }
func GetConfig() *config.Config                   { return cfg }
func SetLogger(l *logrus.Logger)                  { logger = l }
func GetLogger() *logrus.Logger                   { return logger }
func SetUserRepo(r repository.UserRepository)     { userRepo = r }
func GetUserRepo() repository.UserRepository      { return userRepo }
func SetRedis(r *redis.Client)                    { redisClient = r }
func GetRedis() *redis.Client                     { return redisClient }
func SetJWT(m *helpers.JWTManager)                { jwtManager = m }
func GetJWT() *helpers.JWTManager                 { return jwtManager }
func SetPasswordHasher(h *helpers.PasswordHasher) { hasher = h }
func GetPasswordHasher() *helpers.PasswordHasher {
	if hasher != nil {
		return hasher
	}
	return helpers.NewPasswordHasher(helpers.DefaultBcryptCost)
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
