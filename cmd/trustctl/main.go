package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/petmarket-trust/internal/config"
	"github.com/ignatzorin/petmarket-trust/internal/db"
	"github.com/ignatzorin/petmarket-trust/internal/domain/valueobject"
	"github.com/ignatzorin/petmarket-trust/internal/infrastructure/persistence"
	"github.com/ignatzorin/petmarket-trust/internal/logger"
	"github.com/ignatzorin/petmarket-trust/internal/pkg/pagination"
	"github.com/ignatzorin/petmarket-trust/internal/repository"
	"github.com/ignatzorin/petmarket-trust/internal/service"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/listing"
	"github.com/ignatzorin/petmarket-trust/internal/usecase/moderation"
)

var asJSON bool

var rootCmd = &cobra.Command{
	Use:           "trustctl",
	Short:         "Обслуживание модерации заводчиков и жалоб",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "вывод в JSON")
	rootCmd.AddCommand(migrateCmd(), bootstrapCmd(), pendingCmd(), reportsCmd(), tokenCmd(), syncCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

type env struct {
	cfg  *config.Config
	conn *sqlx.DB
}

// withDB загружает конфигурацию и открывает базу на время команды.
func withDB(ctx context.Context, fn func(ctx context.Context, e env) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel)
	logger.SetTextFormatter()

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, env{cfg: cfg, conn: conn})
}

func listingService(e env) *listing.Service {
	return listing.NewService(
		persistence.NewVerificationRepositoryAdapter(e.conn),
		persistence.NewReportRepositoryAdapter(e.conn),
		listing.Config{
			Pagination: pagination.Config{
				DefaultPageSize: e.cfg.ListDefaultPageSize,
				MaxPageSize:     e.cfg.ListMaxPageSize,
			},
			QueryTimeout: e.cfg.ListQueryTimeout,
		},
	)
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, e env) error {
				applied, err := db.RunMigrations(ctx, e.conn, e.cfg.MigrationsPath)
				if err != nil {
					return err
				}
				if len(applied) == 0 {
					fmt.Println("схема актуальна")
					return nil
				}
				for _, name := range applied {
					fmt.Println("applied", name)
				}
				return nil
			})
		},
	}
}

func bootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Создать заявки pending заводчикам без заявки",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, e env) error {
				n, err := service.NewBootstrapService(persistence.NewVerificationRepositoryAdapter(e.conn)).Run(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("обновлено заявок: %d\n", n)
				return nil
			})
		},
	}
}

func pendingCmd() *cobra.Command {
	var (
		statuses []string
		limit    int
		page     int
	)
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Заявки на верификацию, ожидающие решения",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, e env) error {
				result, err := listingService(e).ListVerifications(ctx, listing.VerificationQuery{
					Statuses: statuses,
					Page:     pagination.Request{Page: page, Limit: limit},
				})
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(result)
				}
				renderVerifications(os.Stdout, result)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "фильтр по статусу (можно несколько)")
	cmd.Flags().IntVar(&limit, "limit", 0, "размер страницы")
	cmd.Flags().IntVar(&page, "page", 1, "номер страницы")
	return cmd
}

func reportsCmd() *cobra.Command {
	var (
		statuses []string
		reason   string
		limit    int
		page     int
	)
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Жалобы со сводкой по статусам",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, e env) error {
				result, err := listingService(e).ListReports(ctx, listing.ReportQuery{
					Statuses: statuses,
					Reason:   reason,
					Page:     pagination.Request{Page: page, Limit: limit},
				})
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(result)
				}
				renderReports(os.Stdout, result)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "фильтр по статусу (можно несколько)")
	cmd.Flags().StringVar(&reason, "reason", "", "фильтр по причине")
	cmd.Flags().IntVar(&limit, "limit", 0, "размер страницы")
	cmd.Flags().IntVar(&page, "page", 1, "номер страницы")
	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		userRaw string
		role    string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Выпустить access токен для разработки",
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := uuid.Parse(userRaw)
			if err != nil {
				return fmt.Errorf("--user: %w", err)
			}
			return withDB(cmd.Context(), func(ctx context.Context, e env) error {
				if e.cfg.Env == "production" {
					return fmt.Errorf("token: выпуск токенов недоступен в production")
				}
				if role == "" {
					account, err := repository.NewAccountRepository(e.conn).GetByID(ctx, userID)
					if err != nil {
						return err
					}
					role = account.Role
				}
				if err := checkRole(role); err != nil {
					return err
				}

				token, expires, err := service.NewTokenManager(e.cfg.JWTSecret, e.cfg.AccessTokenTTL).
					GenerateAccess(userID, valueobject.Role(role))
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(map[string]any{"token": token, "expiresAt": expires})
				}
				fmt.Println(token)
				fmt.Fprintf(os.Stderr, "действует до %s\n", expires.Format(time.RFC3339))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&userRaw, "user", "", "id пользователя")
	cmd.Flags().StringVar(&role, "role", "", "роль (admin, breeder, adopter); по умолчанию из аккаунта")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func syncCmd() *cobra.Command {
	sync := &cobra.Command{Use: "sync", Short: "Журнал сбоев синхронизации"}

	var limit int
	retry := &cobra.Command{
		Use:   "retry",
		Short: "Повторить неудавшиеся изменения статуса аккаунтов",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), func(ctx context.Context, e env) error {
				journal := service.NewSyncJournal(
					repository.NewSyncFailureRepository(e.conn),
					nil,
					repository.NewAccountRepository(e.conn),
					moderation.NewEntityStatusReader(
						persistence.NewVerificationRepositoryAdapter(e.conn),
						persistence.NewReportRepositoryAdapter(e.conn),
					),
				)
				report, err := journal.RetryPending(ctx, limit)
				if err != nil {
					return err
				}
				if asJSON {
					return printJSON(report)
				}
				fmt.Printf("восстановлено: %d, устарело: %d, с ошибкой: %d\n", report.Resolved, report.Superseded, report.Failed)
				return nil
			})
		},
	}
	retry.Flags().IntVar(&limit, "limit", 100, "сколько записей обработать")
	sync.AddCommand(retry)
	return sync
}

func checkRole(role string) error {
	switch valueobject.Role(role) {
	case valueobject.RoleAdmin, valueobject.RoleBreeder, valueobject.RoleAdopter:
		return nil
	}
	return fmt.Errorf("неизвестная роль %q", role)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
