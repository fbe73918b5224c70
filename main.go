package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/David-Jacks/faitherpa/internal/config"
	"github.com/David-Jacks/faitherpa/internal/database"
	"github.com/David-Jacks/faitherpa/internal/models"
	"github.com/David-Jacks/faitherpa/internal/router"
	"github.com/David-Jacks/faitherpa/internal/token"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	// load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	// bootstrap admin account from config (optional)
	if err := ensureAdmin(db, cfg); err != nil {
		log.Fatalf("bootstrap admin: %v", err)
	}

	// revocation store: Redis when configured, in-memory otherwise
	revoked, err := newRevocationStore(cfg)
	if err != nil {
		log.Fatalf("init revocation store: %v", err)
	}

	r := router.SetupRouter(cfg, db, revoked)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	log.Printf("listening on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

func newRevocationStore(cfg *config.Config) (token.RevocationStore, error) {
	if cfg.Redis.Addr == "" {
		return token.NewMemoryStore(), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return token.NewRedisStore(client), nil
}

// ensureAdmin 按配置创建（或提升）管理员账号，已存在则只补 isAdmin 标记。
func ensureAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.Admin.PhoneNumber == "" || cfg.Admin.Password == "" {
		return nil
	}

	var user models.User
	err := db.Where("phone_number = ?", cfg.Admin.PhoneNumber).First(&user).Error
	if err == nil {
		if user.IsAdmin {
			return nil
		}
		return db.Model(&user).Update("is_admin", true).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), cfg.Security.BcryptCost)
	if err != nil {
		return err
	}
	name := cfg.Admin.Name
	if name == "" {
		name = "Admin"
	}
	hashStr := string(hash)
	phone := cfg.Admin.PhoneNumber
	admin := models.User{
		Name:         name,
		PhoneNumber:  &phone,
		PasswordHash: &hashStr,
		IsAdmin:      true,
	}
	return db.Create(&admin).Error
}
