/*
 * Copyright 2024-2026 Meridian Labs, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate"
	_ "github.com/golang-migrate/migrate/database/postgres"
	_ "github.com/golang-migrate/migrate/source/file"

	"github.com/meridianlabs/shieldpool/common"
)

const defaultMigrationsPath = "file://./ops/migrations"

func main() {
	m, err := migrate.New(migrationsPath(), databaseURL())
	if err != nil {
		common.Log.Panicf("failed to initialize migrations; %s", err.Error())
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		common.Log.Panicf("failed to apply migrations; %s", err.Error())
	}

	common.Log.Info("migrations up to date")
}

func migrationsPath() string {
	if path := os.Getenv("MIGRATIONS_PATH"); path != "" {
		return path
	}
	return defaultMigrationsPath
}

func databaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := os.Getenv("DATABASE_HOST")
	common.PanicIfEmpty(host, "DATABASE_HOST not provided")
	name := os.Getenv("DATABASE_NAME")
	common.PanicIfEmpty(name, "DATABASE_NAME not provided")
	user := os.Getenv("DATABASE_USER")
	common.PanicIfEmpty(user, "DATABASE_USER not provided")

	port := os.Getenv("DATABASE_PORT")
	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("DATABASE_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user,
		os.Getenv("DATABASE_PASSWORD"),
		host,
		port,
		name,
		sslMode,
	)
}
