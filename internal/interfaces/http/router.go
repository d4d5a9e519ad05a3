package http

import (
	"github.com/gofiber/fiber/v2"
)

// Roles de la aplicación. Los de escritura del ledger son admin y almacenero;
// consulta solo lee.
const (
	RoleAdmin      = "admin"
	RoleAlmacenero = "almacenero"
	RoleConsulta   = "consulta"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Auth       *AuthHandler
	Directorio *DirectorioHandler
	Inventario *InventarioHandler
	Documentos *DocumentoHandler
	Traslados  *TrasladoHandler
	Offline    *OfflineHandler
	JWTSecret  string
	Health     fiber.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", deps.Health)

	api := app.Group("/api")

	// Auth (público, solo development)
	api.Post("/auth/login", deps.Auth.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	escritura := RequireRole(RoleAdmin, RoleAlmacenero)

	// Catálogos del programa
	productos := protected.Group("/productos")
	productos.Post("/", escritura, deps.Directorio.CreateProducto)
	productos.Get("/", deps.Directorio.ListProductos)
	productos.Get("/:id", deps.Directorio.GetProducto)

	beneficiarios := protected.Group("/beneficiarios")
	beneficiarios.Post("/", escritura, deps.Directorio.CreateBeneficiario)
	beneficiarios.Get("/", deps.Directorio.ListBeneficiarios)

	centros := protected.Group("/centros")
	centros.Post("/", escritura, deps.Directorio.CreateCentro)
	centros.Get("/", deps.Directorio.ListCentros)

	// Inventario: ingresos y kardex
	inventario := protected.Group("/inventario")
	inventario.Post("/ingresos", escritura, deps.Inventario.RegistrarIngreso)
	inventario.Get("/stock", deps.Inventario.Stock)
	inventario.Get("/kardex", deps.Inventario.Kardex)
	inventario.Get("/kardex/export", deps.Inventario.ExportarKardex)

	// Documentos (PECOSA)
	documentos := protected.Group("/documentos")
	documentos.Post("/", escritura, deps.Documentos.Emitir)
	documentos.Post("/:referencia/anular", escritura, deps.Documentos.Anular)
	documentos.Get("/:referencia", deps.Documentos.Reimprimir)
	documentos.Get("/:referencia/pdf", deps.Documentos.PDF)

	// Traslados entre programas
	traslados := protected.Group("/traslados")
	traslados.Post("/", escritura, deps.Traslados.Trasladar)
	traslados.Post("/devolucion", escritura, deps.Traslados.Devolver)
	traslados.Get("/prestamos", deps.Traslados.PrestamosPendientes)

	// Cola offline
	offline := protected.Group("/offline")
	offline.Post("/sync", escritura, deps.Offline.Sincronizar)
	offline.Get("/pendientes", deps.Offline.Pendientes)
}
