// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DevSecretKey は開発モードで SECRET_KEY が未設定のときに使う署名鍵です。
const DevSecretKey = "dev"

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// セッション設定
	SecretKey            string // セッションCookie署名用の秘密鍵
	SessionMaxAgeMinutes int    // セッションCookieの有効期限（分）

	// データベース設定
	InstancePath string // 実行時データを置くディレクトリ
	Database     string // SQLiteファイル名（相対パスの場合は InstancePath 基準）

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// リバースプロキシ設定
	TrustedProxies string // X-Forwarded-For を信用するプロキシ（カンマ区切り、空ならすべて不信）

	// ログイン試行制限
	LoginMaxAttempts int    // ロックまでの連続失敗回数（0 なら試行制限なし）
	LoginRedisURL    string // 試行回数をRedisで共有する場合の接続URL（空ならメモリ保持）
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		SecretKey:            getEnv("SECRET_KEY", ""),
		SessionMaxAgeMinutes: getEnvAsInt("SESSION_MAX_AGE_MINUTES", 12*60),

		InstancePath: getEnv("INSTANCE_PATH", "instance"),
		Database:     getEnv("DATABASE", "250words.sqlite"),

		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:8080"),

		TrustedProxies: getEnv("TRUSTED_PROXIES", ""),

		LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 0),
		LoginRedisURL:    getEnv("LOGIN_REDIS_URL", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	// 開発時は Flask 同様 "dev" 鍵で起動できるようにする
	if config.SecretKey == "" {
		config.SecretKey = DevSecretKey
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.GinMode == "release" && c.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required in release mode")
	}
	if c.Database == "" {
		return fmt.Errorf("DATABASE must not be empty")
	}
	if c.SessionMaxAgeMinutes <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_MINUTES must be positive")
	}
	if c.LoginMaxAttempts < 0 {
		return fmt.Errorf("LOGIN_MAX_ATTEMPTS must not be negative")
	}
	return nil
}

// DatabasePath は SQLite ファイルの実際のパスを返します。
func (c *Config) DatabasePath() string {
	if filepath.IsAbs(c.Database) || c.InstancePath == "" {
		return c.Database
	}
	return filepath.Join(c.InstancePath, c.Database)
}

// TrustedProxyList は信用するプロキシの一覧を返します。未設定なら nil です。
func (c *Config) TrustedProxyList() []string {
	var proxies []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

// EnsureInstanceDir はインスタンスディレクトリを作成します（既存なら何もしない）。
func (c *Config) EnsureInstanceDir() error {
	if c.InstancePath == "" {
		return nil
	}
	return os.MkdirAll(c.InstancePath, 0o750)
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
