// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Folio Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/folioweb/folio/internal/store"
)

var _ = Describe("PostgreSQL store", Ordered, func() {
	var (
		ctx       context.Context
		container *postgres.PostgresContainer
		connStr   string
		pool      *pgxpool.Pool
	)

	BeforeAll(func() {
		ctx = context.Background()
		var err error
		container, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("folio_test"),
			postgres.WithUsername("folio"),
			postgres.WithPassword("folio"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		Expect(err).NotTo(HaveOccurred())

		connStr, err = container.ConnectionString(ctx, "sslmode=disable")
		Expect(err).NotTo(HaveOccurred())

		pool, err = store.Open(ctx, connStr, 10*time.Second, nil)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if pool != nil {
			pool.Close()
		}
		if container != nil {
			_ = container.Terminate(ctx)
		}
	})

	Describe("Migrator", func() {
		It("applies, reports and rolls back the schema", func() {
			migrator, err := store.NewMigrator(connStr)
			Expect(err).NotTo(HaveOccurred())
			defer migrator.Close()

			version, dirty, err := migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(BeZero())
			Expect(dirty).To(BeFalse())

			pending, err := migrator.PendingMigrations()
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).NotTo(BeEmpty())

			Expect(migrator.Up()).To(Succeed())
			Expect(migrator.Up()).To(Succeed(), "second Up is a no-op")

			version, _, err = migrator.Version()
			Expect(err).NotTo(HaveOccurred())
			Expect(version).To(Equal(pending[len(pending)-1]))

			Expect(migrator.Down()).To(Succeed())
			var exists bool
			Expect(pool.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'users')`,
			).Scan(&exists)).To(Succeed())
			Expect(exists).To(BeFalse())

			Expect(migrator.Up()).To(Succeed())
		})
	})

	Describe("WithTx", func() {
		It("rolls back every statement when one fails", func() {
			err := store.WithTx(ctx, pool, func(tx pgx.Tx) error {
				if _, err := tx.Exec(ctx,
					`INSERT INTO users (username, email, password_hash) VALUES ('tx', 'tx@example.com', 'h')`); err != nil {
					return err
				}
				_, err := tx.Exec(ctx,
					`INSERT INTO users (username, email, password_hash) VALUES ('tx', 'tx2@example.com', 'h')`)
				return err
			})
			Expect(err).To(HaveOccurred())

			constraint, ok := store.UniqueViolation(err)
			Expect(ok).To(BeTrue())
			Expect(constraint).To(Equal("users_username_key"))

			var n int
			Expect(pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE username = 'tx'`).Scan(&n)).To(Succeed())
			Expect(n).To(BeZero())
		})
	})
})
