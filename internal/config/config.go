package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/models"
)

type Config struct {
	PORT             string
	DB_HOST          string
	DB_PORT          string
	DB_USER          string
	DB_PASSWORD      string
	DB_NAME          string
	REDIS_URL        string
	KAFKA_ADDRESS    string
	ES_URL           string
	ES_USER          string
	ES_PASSWORD      string
	JWT_SECRET       string
	REFRESH_SECRET   string
	SENDGRID_API_KEY string
	MAIL_FROM        string
	MAIL_FROM_NAME   string
	PUBLIC_BASE_URL  string
	LOG_LEVEL        string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		PORT:             os.Getenv("PORT"),
		DB_HOST:          os.Getenv("DB_HOST"),
		DB_PORT:          os.Getenv("DB_PORT"),
		DB_USER:          os.Getenv("DB_USER"),
		DB_PASSWORD:      os.Getenv("DB_PASSWORD"),
		DB_NAME:          os.Getenv("DB_NAME"),
		REDIS_URL:        os.Getenv("REDIS_URL"),
		KAFKA_ADDRESS:    os.Getenv("KAFKA_ADDRESS"),
		ES_URL:           os.Getenv("ES_URL"),
		ES_USER:          os.Getenv("ES_USER"),
		ES_PASSWORD:      os.Getenv("ES_PASSWORD"),
		JWT_SECRET:       os.Getenv("JWT_SECRET"),
		REFRESH_SECRET:   os.Getenv("REFRESH_SECRET"),
		SENDGRID_API_KEY: os.Getenv("SENDGRID_API_KEY"),
		MAIL_FROM:        os.Getenv("MAIL_FROM"),
		MAIL_FROM_NAME:   os.Getenv("MAIL_FROM_NAME"),
		PUBLIC_BASE_URL:  os.Getenv("PUBLIC_BASE_URL"),
		LOG_LEVEL:        os.Getenv("LOG_LEVEL"),
	}

	if config.PORT == "" {
		config.PORT = "8080"
	}
	if config.MAIL_FROM_NAME == "" {
		config.MAIL_FROM_NAME = "Џамбо Играчки"
	}

	return config, nil
}

func InitDB(configuration *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		configuration.DB_USER, configuration.DB_PASSWORD,
		configuration.DB_HOST, configuration.DB_PORT, configuration.DB_NAME,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("не можеше да се поврзе со базата: %w", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Customer{},
		&models.Order{},
		&models.SaleRecord{},
		&models.User{},
		&models.RefreshToken{},
	); err != nil {
		return nil, fmt.Errorf("не можеше да се изврши миграција: %w", err)
	}
	return db, nil
}
