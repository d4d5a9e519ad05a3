package ledger_test

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rvaldivia/almacen-pan/internal/application/ledger"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

// memStore es un almacén en memoria que respalda todos los repositorios
// falsos. El TxRunner falso lo clona antes de cada transacción y lo restaura
// si la función falla, imitando el rollback de la BD real.
type memStore struct {
	productos   map[string]*entity.Producto
	lotes       map[string]*entity.Lote
	movimientos []*entity.Movimiento
	documentos  map[string]*entity.Documento
	prestamos   map[string]*entity.Prestamo
	secuencias  map[string]int64
}

func newMemStore() *memStore {
	return &memStore{
		productos:  map[string]*entity.Producto{},
		lotes:      map[string]*entity.Lote{},
		documentos: map[string]*entity.Documento{},
		prestamos:  map[string]*entity.Prestamo{},
		secuencias: map[string]int64{},
	}
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.productos {
		cp := *v
		c.productos[k] = &cp
	}
	for k, v := range s.lotes {
		cp := *v
		c.lotes[k] = &cp
	}
	for _, m := range s.movimientos {
		cp := *m
		c.movimientos = append(c.movimientos, &cp)
	}
	for k, v := range s.documentos {
		cp := *v
		c.documentos[k] = &cp
	}
	for k, v := range s.prestamos {
		cp := *v
		c.prestamos[k] = &cp
	}
	for k, v := range s.secuencias {
		c.secuencias[k] = v
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.productos = from.productos
	s.lotes = from.lotes
	s.movimientos = from.movimientos
	s.documentos = from.documentos
	s.prestamos = from.prestamos
	s.secuencias = from.secuencias
}

func (s *memStore) repos() ledger.Repos {
	return ledger.Repos{
		Productos:   &fakeProductoRepo{s},
		Lotes:       &fakeLoteRepo{s},
		Movimientos: &fakeMovimientoRepo{s},
		Documentos:  &fakeDocumentoRepo{s},
		Prestamos:   &fakePrestamoRepo{s},
		Secuencias:  &fakeSecuenciaRepo{s},
	}
}

// fakeTxRunner ejecuta la función sobre el almacén compartido con rollback
// por clonación.
type fakeTxRunner struct {
	s *memStore
}

func (r *fakeTxRunner) Run(_ context.Context, fn func(repos ledger.Repos) error) error {
	snapshot := r.s.clone()
	if err := fn(r.s.repos()); err != nil {
		r.s.restore(snapshot)
		return err
	}
	return nil
}

// nopAudit descarta los eventos de auditoría.
type nopAudit struct{}

func (nopAudit) Registrar(context.Context, string, string, map[string]any) {}

// ── Repositorios falsos ───────────────────────────────────────────────────────

type fakeProductoRepo struct{ s *memStore }

func (r *fakeProductoRepo) Create(_ context.Context, p *entity.Producto) error {
	cp := *p
	r.s.productos[p.ID] = &cp
	return nil
}

func (r *fakeProductoRepo) GetByID(_ context.Context, id string) (*entity.Producto, error) {
	p, ok := r.s.productos[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductoRepo) GetForUpdate(ctx context.Context, id string) (*entity.Producto, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductoRepo) GetEquivalente(_ context.Context, programa, nombre, unidad string) (*entity.Producto, error) {
	for _, p := range r.s.productos {
		if p.Programa == programa && p.Nombre == nombre && p.Unidad == unidad {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductoRepo) Update(_ context.Context, p *entity.Producto) error {
	cp := *p
	r.s.productos[p.ID] = &cp
	return nil
}

func (r *fakeProductoRepo) UpdateDerivados(_ context.Context, id string, stock, costoPromedio decimal.Decimal) error {
	p, ok := r.s.productos[id]
	if !ok {
		return fmt.Errorf("producto %s no existe", id)
	}
	p.StockActual = stock
	p.CostoPromedio = costoPromedio
	return nil
}

func (r *fakeProductoRepo) ListByPrograma(_ context.Context, programa string, _, _ int) ([]*entity.Producto, error) {
	var out []*entity.Producto
	for _, p := range r.s.productos {
		if p.Programa == programa {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	return out, nil
}

type fakeLoteRepo struct{ s *memStore }

func (r *fakeLoteRepo) Create(_ context.Context, l *entity.Lote) error {
	cp := *l
	r.s.lotes[l.ID] = &cp
	return nil
}

func (r *fakeLoteRepo) GetByID(_ context.Context, id string) (*entity.Lote, error) {
	l, ok := r.s.lotes[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *fakeLoteRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lote, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeLoteRepo) ListDisponiblesForUpdate(_ context.Context, productoID string) ([]*entity.Lote, error) {
	var out []*entity.Lote
	for _, l := range r.s.lotes {
		if l.ProductoID == productoID && l.CantidadActual.IsPositive() {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *fakeLoteRepo) GetEquivalente(_ context.Context, productoID, codigo string, vencimiento *time.Time) (*entity.Lote, error) {
	for _, l := range r.s.lotes {
		if l.ProductoID != productoID || l.Codigo != codigo {
			continue
		}
		if (l.Vencimiento == nil) != (vencimiento == nil) {
			continue
		}
		if l.Vencimiento != nil && !l.Vencimiento.Equal(*vencimiento) {
			continue
		}
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeLoteRepo) UpdateCantidad(_ context.Context, id string, cantidad decimal.Decimal) error {
	l, ok := r.s.lotes[id]
	if !ok {
		return fmt.Errorf("lote %s no existe", id)
	}
	l.CantidadActual = cantidad
	return nil
}

func (r *fakeLoteRepo) Recargar(_ context.Context, id string, adicional decimal.Decimal) error {
	l, ok := r.s.lotes[id]
	if !ok {
		return fmt.Errorf("lote %s no existe", id)
	}
	l.CantidadInicial = l.CantidadInicial.Add(adicional)
	l.CantidadActual = l.CantidadActual.Add(adicional)
	return nil
}

func (r *fakeLoteRepo) ListByProducto(_ context.Context, productoID string) ([]*entity.Lote, error) {
	var out []*entity.Lote
	for _, l := range r.s.lotes {
		if l.ProductoID == productoID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeMovimientoRepo struct{ s *memStore }

func (r *fakeMovimientoRepo) Create(_ context.Context, m *entity.Movimiento) error {
	cp := *m
	r.s.movimientos = append(r.s.movimientos, &cp)
	return nil
}

func (r *fakeMovimientoRepo) GetByID(_ context.Context, id string) (*entity.Movimiento, error) {
	for _, m := range r.s.movimientos {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMovimientoRepo) ListByReferencia(_ context.Context, referencia string) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.s.movimientos {
		if m.Referencia == referencia {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMovimientoRepo) ListByProducto(_ context.Context, productoID string, desde, hasta *time.Time, _, _ int) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.s.movimientos {
		if m.ProductoID != productoID {
			continue
		}
		if desde != nil && m.CreatedAt.Before(*desde) {
			continue
		}
		if hasta != nil && m.CreatedAt.After(*hasta) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeMovimientoRepo) ListByPrograma(_ context.Context, programa string, _, _ *time.Time, _, _ int) ([]*entity.Movimiento, error) {
	var out []*entity.Movimiento
	for _, m := range r.s.movimientos {
		if m.Programa == programa {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeDocumentoRepo struct{ s *memStore }

func (r *fakeDocumentoRepo) Create(_ context.Context, d *entity.Documento) error {
	cp := *d
	r.s.documentos[d.Referencia] = &cp
	return nil
}

func (r *fakeDocumentoRepo) GetByReferencia(_ context.Context, referencia string) (*entity.Documento, error) {
	d, ok := r.s.documentos[referencia]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocumentoRepo) GetByReferenciaForUpdate(ctx context.Context, referencia string) (*entity.Documento, error) {
	return r.GetByReferencia(ctx, referencia)
}

func (r *fakeDocumentoRepo) Anular(_ context.Context, referencia, justificacion, usuario string, cuando time.Time) error {
	d, ok := r.s.documentos[referencia]
	if !ok {
		return fmt.Errorf("documento %s no existe", referencia)
	}
	d.Estado = entity.DocumentoAnulada
	d.Justificacion = justificacion
	d.AnuladaBy = usuario
	d.AnuladaAt = &cuando
	return nil
}

func (r *fakeDocumentoRepo) ListByPrograma(_ context.Context, programa string, _, _ int) ([]*entity.Documento, error) {
	var out []*entity.Documento
	for _, d := range r.s.documentos {
		if d.Programa == programa {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakePrestamoRepo struct{ s *memStore }

func (r *fakePrestamoRepo) Create(_ context.Context, p *entity.Prestamo) error {
	cp := *p
	r.s.prestamos[p.ID] = &cp
	return nil
}

func (r *fakePrestamoRepo) GetByID(_ context.Context, id string) (*entity.Prestamo, error) {
	p, ok := r.s.prestamos[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePrestamoRepo) GetByMovimientoIngreso(_ context.Context, movimientoID string) (*entity.Prestamo, error) {
	for _, p := range r.s.prestamos {
		if p.MovimientoIngresoID == movimientoID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePrestamoRepo) MarcarDevuelto(_ context.Context, id string, cuando time.Time) error {
	p, ok := r.s.prestamos[id]
	if !ok {
		return fmt.Errorf("prestamo %s no existe", id)
	}
	p.Estado = entity.PrestamoDevuelto
	p.DevueltoAt = &cuando
	return nil
}

func (r *fakePrestamoRepo) ListPendientes(_ context.Context, programa string) ([]*entity.Prestamo, error) {
	var out []*entity.Prestamo
	for _, p := range r.s.prestamos {
		if p.Estado == entity.PrestamoPendiente && (p.ProgramaOrigen == programa || p.ProgramaDestino == programa) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeSecuenciaRepo struct{ s *memStore }

func (r *fakeSecuenciaRepo) Siguiente(_ context.Context, serie, programa string, anio int) (int64, error) {
	key := fmt.Sprintf("%s|%s|%d", serie, programa, anio)
	r.s.secuencias[key]++
	return r.s.secuencias[key], nil
}

type fakeCentroRepo struct{ centros map[string]*entity.Centro }

func (r *fakeCentroRepo) Create(_ context.Context, c *entity.Centro) error {
	if r.centros == nil {
		r.centros = map[string]*entity.Centro{}
	}
	cp := *c
	r.centros[c.ID] = &cp
	return nil
}

func (r *fakeCentroRepo) GetByID(_ context.Context, id string) (*entity.Centro, error) {
	c, ok := r.centros[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCentroRepo) Update(_ context.Context, c *entity.Centro) error {
	cp := *c
	r.centros[c.ID] = &cp
	return nil
}

func (r *fakeCentroRepo) ListByPrograma(_ context.Context, programa string, _, _ int) ([]*entity.Centro, error) {
	var out []*entity.Centro
	for _, c := range r.centros {
		if c.Programa == programa {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeBeneficiarioRepo struct{ beneficiarios map[string]*entity.Beneficiario }

func (r *fakeBeneficiarioRepo) Create(_ context.Context, b *entity.Beneficiario) error {
	if r.beneficiarios == nil {
		r.beneficiarios = map[string]*entity.Beneficiario{}
	}
	cp := *b
	r.beneficiarios[b.ID] = &cp
	return nil
}

func (r *fakeBeneficiarioRepo) GetByID(_ context.Context, id string) (*entity.Beneficiario, error) {
	b, ok := r.beneficiarios[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBeneficiarioRepo) GetByDNI(_ context.Context, programa, dni string) (*entity.Beneficiario, error) {
	for _, b := range r.beneficiarios {
		if b.Programa == programa && b.DNI == dni {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBeneficiarioRepo) Update(_ context.Context, b *entity.Beneficiario) error {
	cp := *b
	r.beneficiarios[b.ID] = &cp
	return nil
}

func (r *fakeBeneficiarioRepo) ListByPrograma(_ context.Context, programa string, _, _ int) ([]*entity.Beneficiario, error) {
	var out []*entity.Beneficiario
	for _, b := range r.beneficiarios {
		if b.Programa == programa {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── Helpers de armado ─────────────────────────────────────────────────────────

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func fecha(dias int) *time.Time {
	t := time.Now().AddDate(0, 0, dias)
	return &t
}

// sembrarProducto agrega un producto con sus lotes y deja el stock derivado
// cuadrado con la suma de lotes.
func sembrarProducto(s *memStore, p *entity.Producto, lotes ...*entity.Lote) {
	total := decimal.Zero
	for _, l := range lotes {
		l.ProductoID = p.ID
		l.Programa = p.Programa
		s.lotes[l.ID] = l
		total = total.Add(l.CantidadActual)
	}
	p.StockActual = total
	s.productos[p.ID] = p
}
