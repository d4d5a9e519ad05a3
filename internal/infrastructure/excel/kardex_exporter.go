// Package excel exporta el kardex de un producto como archivo xlsx.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/rvaldivia/almacen-pan/internal/application/reports"
	"github.com/rvaldivia/almacen-pan/internal/domain/entity"
)

var _ reports.KardexExporter = (*KardexExporter)(nil)

const hoja = "Kardex"

// KardexExporter implementa reports.KardexExporter con excelize.
type KardexExporter struct{}

// NewKardexExporter construye el exportador.
func NewKardexExporter() *KardexExporter { return &KardexExporter{} }

// Exportar genera el xlsx del kardex. Los movimientos llegan del repositorio
// más recientes primero; el archivo los presenta en orden cronológico.
func (e *KardexExporter) Exportar(producto *entity.Producto, movimientos []*entity.Movimiento) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(hoja)
	if err != nil {
		return nil, fmt.Errorf("excel: crear hoja: %w", err)
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(hoja, "A1", "Producto")
	f.SetCellValue(hoja, "B1", producto.Nombre)
	f.SetCellValue(hoja, "A2", "Programa")
	f.SetCellValue(hoja, "B2", producto.Programa)
	f.SetCellValue(hoja, "A3", "Unidad")
	f.SetCellValue(hoja, "B3", producto.Unidad)
	f.SetCellValue(hoja, "A4", "Stock actual")
	f.SetCellValue(hoja, "B4", producto.StockActual.String())
	f.SetCellValue(hoja, "A5", "Costo promedio")
	f.SetCellValue(hoja, "B5", producto.CostoPromedio.StringFixed(4))

	headers := []string{"Fecha", "Tipo", "Referencia", "Cantidad", "Costo unitario", "Valor", "Observación"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 7)
		f.SetCellValue(hoja, cell, h)
	}

	fila := 8
	for i := len(movimientos) - 1; i >= 0; i-- {
		m := movimientos[i]
		f.SetCellValue(hoja, "A"+fmt.Sprint(fila), m.CreatedAt.Format("02/01/2006 15:04"))
		f.SetCellValue(hoja, "B"+fmt.Sprint(fila), m.Tipo)
		f.SetCellValue(hoja, "C"+fmt.Sprint(fila), m.Referencia)
		f.SetCellValue(hoja, "D"+fmt.Sprint(fila), m.Cantidad.String())
		f.SetCellValue(hoja, "E"+fmt.Sprint(fila), m.CostoUnit.StringFixed(4))
		f.SetCellValue(hoja, "F"+fmt.Sprint(fila), m.Cantidad.Mul(m.CostoUnit).StringFixed(2))
		f.SetCellValue(hoja, "G"+fmt.Sprint(fila), m.Observacion)
		fila++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("excel: escribir archivo: %w", err)
	}
	return buf.Bytes(), nil
}
