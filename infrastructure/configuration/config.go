package configuration

import (
	"fmt"
	"os"
	"strconv"

	"channelhub/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App        App        `json:"app"`
	Database   Database   `json:"database"`
	Redis      Redis      `json:"redis"`
	Pubsub     Pubsub     `json:"pubsub"`
	Encryption Encryption `json:"encryption"`
	OAuth      OAuth      `json:"oauth"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	FrontendURL string `json:"frontendURL"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Redis struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID  string `json:"projectID"`
	AlertTopic string `json:"alertTopic"`
}

type Encryption struct {
	// KeyBase64 must decode to 32 bytes (AES-256).
	KeyBase64 string `json:"keyBase64"`
}

// OAuth holds third-party platform client credentials.
type OAuth struct {
	Shopify         OAuthClient `json:"shopify"`
	Facebook        OAuthClient `json:"facebook"`
	GoogleAds       OAuthClient `json:"googleAds"`
	GoogleAnalytics OAuthClient `json:"googleAnalytics"`
	Amazon          OAuthClient `json:"amazon"`
	Flipkart        OAuthClient `json:"flipkart"`
}

type OAuthClient struct {
	ClientID       string `json:"clientId"`
	ClientSecret   string `json:"clientSecret"`
	RedirectURI    string `json:"redirectURI"`
	DeveloperToken string `json:"developerToken"`
	RoleARN        string `json:"roleARN"`
	Region         string `json:"region"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initOAuth(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	if env := os.Getenv("ENV"); env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}

	if C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = os.Getenv("MONGO_HOST")
	}
	if C.Database.Mongo.Port == "" {
		C.Database.Mongo.Port = os.Getenv("MONGO_PORT")
	}
	if C.Database.Mongo.User == "" {
		C.Database.Mongo.User = os.Getenv("MONGO_USER")
	}
	if C.Database.Mongo.Password == "" {
		C.Database.Mongo.Password = os.Getenv("MONGO_PASSWORD")
	}
	if C.Database.Mongo.Name == "" {
		if v := os.Getenv("MONGO_DB_NAME"); v != "" {
			C.Database.Mongo.Name = v
		} else {
			C.Database.Mongo.Name = "channelhub"
		}
	}
}

func initApp(C *Config) {
	// SECRET_KEY from environment overrides the config file when provided.
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 5000
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		C.App.FrontendURL = v
	}
	if C.App.FrontendURL == "" {
		C.App.FrontendURL = "http://localhost:5173"
	}
	if v := os.Getenv("TOKEN_ENC_KEY_B64"); v != "" {
		C.Encryption.KeyBase64 = v
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initOAuth(C *Config) {
	fill := func(client *OAuthClient, prefix string) {
		if client.ClientID == "" {
			client.ClientID = os.Getenv(prefix + "_CLIENT_ID")
		}
		if client.ClientSecret == "" {
			client.ClientSecret = os.Getenv(prefix + "_CLIENT_SECRET")
		}
		if client.RedirectURI == "" {
			client.RedirectURI = os.Getenv(prefix + "_REDIRECT_URI")
		}
		if client.DeveloperToken == "" {
			client.DeveloperToken = os.Getenv(prefix + "_DEVELOPER_TOKEN")
		}
	}
	fill(&C.OAuth.Shopify, "SHOPIFY")
	fill(&C.OAuth.Facebook, "FACEBOOK")
	fill(&C.OAuth.GoogleAds, "GOOGLE_ADS")
	fill(&C.OAuth.GoogleAnalytics, "GOOGLE_ANALYTICS")
	fill(&C.OAuth.Amazon, "AMAZON")
	fill(&C.OAuth.Flipkart, "FLIPKART")
	if C.OAuth.Amazon.RoleARN == "" {
		C.OAuth.Amazon.RoleARN = os.Getenv("AMAZON_ROLE_ARN")
	}
	if C.OAuth.Amazon.Region == "" {
		C.OAuth.Amazon.Region = "na"
	}
}
