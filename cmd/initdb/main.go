// Command initdb はデータベースのテーブルを削除して作り直します。既存データはすべて消えます。
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/yourusername/250words/internal/config"
	"github.com/yourusername/250words/internal/database"
)

func main() {
	path := flag.String("database", "", "SQLiteファイルのパス（省略時は設定値）")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	target := *path
	if target == "" {
		if err := cfg.EnsureInstanceDir(); err != nil {
			log.Fatalf("Failed to create instance dir: %v", err)
		}
		target = cfg.DatabasePath()
	}

	db, err := database.Open(target)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := database.InitSchema(context.Background(), db); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	fmt.Println("Initialized the database")
}
