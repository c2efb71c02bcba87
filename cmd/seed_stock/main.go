// seed_stock carga items de bodega desde un CSV exportado de la planilla de inventario.
//
// Uso: go run ./cmd/seed_stock [-latin1] [ruta/items.csv]
// Por defecto busca items.csv en el directorio actual. Usa STORE_DRIVER y el resto de la
// configuración de la API. Columnas (con encabezado):
//
//	id,name,code,color,warehouse_id,unit_price,added_quantity,cartons_count,bottles_per_carton,single_bottles
//
// Un item existente conserva su remaining_quantity; solo se actualizan los datos de gestión.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jhoicas/bodega-api/internal/application/inventory"
	"github.com/jhoicas/bodega-api/internal/infrastructure/bootstrap"
	"github.com/jhoicas/bodega-api/pkg/config"
	"github.com/jhoicas/bodega-api/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var columns = []string{
	"id", "name", "code", "color", "warehouse_id", "unit_price",
	"added_quantity", "cartons_count", "bottles_per_carton", "single_bottles",
}

func main() {
	latin1 := flag.Bool("latin1", false, "el CSV viene en ISO-8859-1 (export de Excel)")
	flag.Parse()
	csvPath := "items.csv"
	if flag.NArg() > 0 {
		csvPath = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed_stock"})

	f, err := os.Open(csvPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", csvPath).Msg("abrir CSV")
	}
	defer f.Close()

	var r io.Reader = f
	if *latin1 {
		r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}
	rows, err := parseRows(r)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacén")
	}
	defer closeStore()

	catalog := inventory.NewStockCatalogUseCase(store, log.Component("seed"))
	saved := 0
	for i, in := range rows {
		if _, err := catalog.Upsert(ctx, in); err != nil {
			log.Error().Err(err).Int("row", i+2).Str("id", in.ID).Msg("item rechazado")
			continue
		}
		saved++
	}
	log.Info().Int("rows", len(rows)).Int("saved", saved).Msg("carga de items terminada")
}

// parseRows lee el CSV completo. Las filas vacías se ignoran; un valor numérico inválido
// corta la carga indicando fila y columna.
func parseRows(r io.Reader) ([]inventory.StockItemInput, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("CSV vacío")
		}
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, c := range []string{"id", "name", "code", "warehouse_id"} {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("falta la columna %q", c)
		}
	}

	var out []inventory.StockItemInput
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if get("id") == "" && get("name") == "" {
			continue
		}
		in := inventory.StockItemInput{
			ID:          get("id"),
			Name:        get("name"),
			Code:        get("code"),
			Color:       get("color"),
			WarehouseID: get("warehouse_id"),
		}
		if s := get("unit_price"); s != "" {
			price, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
			if err != nil {
				return nil, fmt.Errorf("fila %d, unit_price %q: %w", line, s, err)
			}
			in.UnitPrice = price
		}
		ints := []struct {
			col string
			dst *int64
		}{
			{"added_quantity", &in.AddedQuantity},
			{"cartons_count", &in.CartonsCount},
			{"bottles_per_carton", &in.BottlesPerCarton},
			{"single_bottles", &in.SingleBottles},
		}
		for _, f := range ints {
			s := get(f.col)
			if s == "" {
				continue
			}
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("fila %d, %s %q: %w", line, f.col, s, err)
			}
			*f.dst = n
		}
		out = append(out, in)
	}
	return out, nil
}
