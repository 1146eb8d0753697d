// seed prepara una instalación nueva: aplica las migraciones y crea el primer
// punto de venta y el usuario administrador, directo contra la base de datos.
//
// Uso: go run ./cmd/seed -email admin@negocio.co -password <clave> [-name "Admin"] [-outlet "Principal"]
// La conexión se toma de la misma configuración que usa la API (DATABASE_URL o DB_*).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Pos-api/internal/domain/entity"
	"github.com/jhoicas/Pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Pos-api/pkg/config"
)

func main() {
	email := flag.String("email", "", "email del administrador (obligatorio)")
	password := flag.String("password", "", "contraseña del administrador, mínimo 8 caracteres (obligatorio)")
	name := flag.String("name", "Administrador", "nombre del administrador")
	outletName := flag.String("outlet", "Principal", "nombre del primer punto de venta")
	flag.Parse()

	if *email == "" || len(*password) < 8 {
		fmt.Fprintln(os.Stderr, "se requieren -email y -password (mínimo 8 caracteres)")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrations(cfg.DB.ConnectionString(), cfg.DB.MigrationsPath); err != nil {
		fmt.Fprintf(os.Stderr, "migraciones: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conexión a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	outletRepo := postgres.NewOutletRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	now := time.Now()

	// Punto de venta: reutilizar el existente si ya hay alguno.
	var outletID string
	outlets, err := outletRepo.List(1, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "listar puntos de venta: %v\n", err)
		os.Exit(1)
	}
	if len(outlets) > 0 {
		outletID = outlets[0].ID
		fmt.Printf("punto de venta existente: %s (%s)\n", outlets[0].Name, outletID)
	} else {
		outlet := &entity.Outlet{
			ID:        uuid.New().String(),
			Name:      *outletName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := outletRepo.Create(outlet); err != nil {
			fmt.Fprintf(os.Stderr, "crear punto de venta: %v\n", err)
			os.Exit(1)
		}
		outletID = outlet.ID
		fmt.Printf("punto de venta creado: %s (%s)\n", outlet.Name, outletID)
	}

	if existing, err := userRepo.GetByEmail(*email); err != nil {
		fmt.Fprintf(os.Stderr, "consultar usuario: %v\n", err)
		os.Exit(1)
	} else if existing != nil {
		fmt.Printf("el usuario %s ya existe, nada que hacer\n", *email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashear contraseña: %v\n", err)
		os.Exit(1)
	}
	admin := &entity.User{
		ID:           uuid.New().String(),
		OutletID:     outletID,
		Email:        *email,
		PasswordHash: string(hash),
		Name:         *name,
		Role:         entity.RoleAdmin,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := userRepo.Create(admin); err != nil {
		fmt.Fprintf(os.Stderr, "crear administrador: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("administrador creado: %s (%s)\n", *email, admin.ID)
}
