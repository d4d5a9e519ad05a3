package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/rvaldivia/almacen-pan/internal/application/directorio"
	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
	"github.com/rvaldivia/almacen-pan/internal/application/offline"
	"github.com/rvaldivia/almacen-pan/internal/application/reports"
	infraaudit "github.com/rvaldivia/almacen-pan/internal/infrastructure/audit"
	infraexcel "github.com/rvaldivia/almacen-pan/internal/infrastructure/excel"
	infrapdf "github.com/rvaldivia/almacen-pan/internal/infrastructure/pdf"
	"github.com/rvaldivia/almacen-pan/internal/infrastructure/postgres"
	infrasqlite "github.com/rvaldivia/almacen-pan/internal/infrastructure/sqlite"
	httpRouter "github.com/rvaldivia/almacen-pan/internal/interfaces/http"
	"github.com/rvaldivia/almacen-pan/pkg/config"
	"github.com/rvaldivia/almacen-pan/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// El arranque no exige conectividad: sin red la API levanta igual y las
	// mutaciones van a la cola local.
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de PostgreSQL inválida")
	}
	defer pool.Close()

	txRunner := postgres.NewTxRunner(pool)
	productoRepo := postgres.NewProductoRepository(pool)
	loteRepo := postgres.NewLoteRepository(pool)
	movimientoRepo := postgres.NewMovimientoRepository(pool)
	documentoRepo := postgres.NewDocumentoRepository(pool)
	prestamoRepo := postgres.NewPrestamoRepository(pool)
	beneficiarioRepo := postgres.NewBeneficiarioRepository(pool)
	centroRepo := postgres.NewCentroRepository(pool)

	audit := infraaudit.NewZerologSink(log)

	ingresoUC := ledger.NewIngresoUseCase(txRunner, audit)
	documentoUC := ledger.NewDocumentoUseCase(
		txRunner, audit,
		documentoRepo, movimientoRepo, productoRepo, loteRepo, centroRepo, beneficiarioRepo,
	)
	trasladoUC := ledger.NewTrasladoUseCase(txRunner, audit)
	directorioUC := directorio.NewUseCase(productoRepo, beneficiarioRepo, centroRepo)
	kardexUC := reports.NewKardexUseCase(productoRepo, loteRepo, movimientoRepo, infraexcel.NewKardexExporter())

	// Cola offline: cada tipo de operación se reaplica con el mismo caso de
	// uso que la originó.
	queueStore, err := infrasqlite.NewQueueStore(cfg.Offline.QueuePath)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir cola offline")
	}
	defer queueStore.Close()

	despachador := offline.NewDespachador()
	despachador.Registrar(offline.OpRegistrarIngreso, func(ctx context.Context, payload json.RawMessage) error {
		var input ledger.IngresoInput
		if err := json.Unmarshal(payload, &input); err != nil {
			return err
		}
		_, err := ingresoUC.RegistrarIngreso(ctx, input)
		return err
	})
	despachador.Registrar(offline.OpEmitirDocumento, func(ctx context.Context, payload json.RawMessage) error {
		var input ledger.EmisionInput
		if err := json.Unmarshal(payload, &input); err != nil {
			return err
		}
		_, err := documentoUC.EmitirDocumento(ctx, input)
		return err
	})
	despachador.Registrar(offline.OpAnularDocumento, func(ctx context.Context, payload json.RawMessage) error {
		var input struct {
			Referencia    string `json:"referencia"`
			Justificacion string `json:"justificacion"`
			UsuarioID     string `json:"usuario_id"`
		}
		if err := json.Unmarshal(payload, &input); err != nil {
			return err
		}
		return documentoUC.AnularDocumento(ctx, input.Referencia, input.Justificacion, input.UsuarioID)
	})
	despachador.Registrar(offline.OpTrasladar, func(ctx context.Context, payload json.RawMessage) error {
		var input ledger.TrasladoInput
		if err := json.Unmarshal(payload, &input); err != nil {
			return err
		}
		_, err := trasladoUC.Trasladar(ctx, input)
		return err
	})
	despachador.Registrar(offline.OpDevolverPrestamo, func(ctx context.Context, payload json.RawMessage) error {
		var input struct {
			MovimientoIngresoID string `json:"movimiento_ingreso_id"`
			UsuarioID           string `json:"usuario_id"`
		}
		if err := json.Unmarshal(payload, &input); err != nil {
			return err
		}
		_, err := trasladoUC.DevolverPrestamo(ctx, input.MovimientoIngresoID, input.UsuarioID)
		return err
	})

	cola := offline.NewCola(queueStore, despachador, postgres.EsErrorDeConectividad, log)
	monitor := offline.NewMonitor(
		pool.Ping, cola,
		time.Duration(cfg.Offline.SyncInterval)*time.Second,
		cfg.Offline.SyncMax, log,
	)
	go monitor.Iniciar(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Auth:       httpRouter.NewAuthHandler(cfg.App.Env, cfg.JWT),
		Directorio: httpRouter.NewDirectorioHandler(directorioUC),
		Inventario: httpRouter.NewInventarioHandler(ingresoUC, kardexUC, cola),
		Documentos: httpRouter.NewDocumentoHandler(documentoUC, cola, infrapdf.NewPecosaPDFGenerator()),
		Traslados:  httpRouter.NewTrasladoHandler(trasladoUC, prestamoRepo, cola),
		Offline:    httpRouter.NewOfflineHandler(cola, monitor),
		JWTSecret:  cfg.JWT.Secret,
		Health: func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{
				"status":   "ok",
				"service":  cfg.App.Name,
				"en_linea": monitor.EnLinea(),
			})
		},
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
