// Package calendar modela fechas de calendario (granularidad de día, sin hora).
// Los movimientos de estoque se filtran y agregan por día; la zona horaria solo
// interviene al calcular "hoy", y esa zona es fija por despliegue.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Layout formato ISO-8601 usado para leer y escribir fechas.
const Layout = "2006-01-02"

// Date fecha de calendario sobre civil.Date. El valor cero representa "sin fecha".
type Date struct {
	c civil.Date
}

// New devuelve una fecha normalizada (p. ej. 31 de febrero pasa a marzo).
func New(year int, month time.Month, day int) Date {
	return Date{c: civil.DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))}
}

// FromCivil envuelve una civil.Date.
func FromCivil(c civil.Date) Date { return Date{c: c} }

// FromTime devuelve la fecha de t vista en la zona loc.
func FromTime(t time.Time, loc *time.Location) Date {
	if loc != nil {
		t = t.In(loc)
	}
	return Date{c: civil.DateOf(t)}
}

// Today devuelve la fecha actual en la zona loc.
func Today(loc *time.Location) Date { return FromTime(time.Now(), loc) }

// Parse lee una fecha en formato 2006-01-02.
func Parse(s string) (Date, error) {
	c, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("fecha inválida %q, formato esperado %s: %w", s, Layout, err)
	}
	return Date{c: c}, nil
}

// MustParse como Parse pero entra en pánico ante error. Útil en tests.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// ParseOptional devuelve la fecha cero para una cadena vacía.
func ParseOptional(s string) (Date, error) {
	if strings.TrimSpace(s) == "" {
		return Date{}, nil
	}
	return Parse(s)
}

// IsZero indica si la fecha no fue informada.
func (d Date) IsZero() bool { return d.c == civil.Date{} }

// Civil devuelve la civil.Date subyacente.
func (d Date) Civil() civil.Date { return d.c }

// Time representación canónica: medianoche UTC del día.
func (d Date) Time() time.Time { return d.c.In(time.UTC) }

func (d Date) Year() int         { return d.c.Year }
func (d Date) Month() time.Month { return d.c.Month }
func (d Date) Day() int          { return d.c.Day }

// AddDays devuelve la fecha desplazada n días.
func (d Date) AddDays(n int) Date { return Date{c: d.c.AddDays(n)} }

// Compare devuelve -1, 0 o +1 según d sea anterior, igual o posterior a x.
func (d Date) Compare(x Date) int {
	switch {
	case d.c.Before(x.c):
		return -1
	case d.c.After(x.c):
		return 1
	}
	return 0
}

func (d Date) Before(x Date) bool { return d.c.Before(x.c) }
func (d Date) After(x Date) bool  { return d.c.After(x.c) }
func (d Date) Equal(x Date) bool  { return d.c == x.c }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.c.String()
}

// MarshalJSON escribe la fecha como "2006-01-02" (cadena vacía si es cero).
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON acepta "2006-01-02", cadena vacía o null.
func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseOptional(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

var (
	_ json.Marshaler   = Date{}
	_ json.Unmarshaler = (*Date)(nil)
)
