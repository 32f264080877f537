package web

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"pefitness/internal/domain/fitness"
)

var errInvalidNumber = errors.New("測驗數值格式不正確")

// parseMeasurement reads the fitness form. Blank numeric fields are 0.
// POST: returns a *fitness.ValidationError when a number does not parse
func parseMeasurement(r *http.Request) (fitness.RawMeasurement, error) {
	m := fitness.RawMeasurement{
		Name:       r.PostFormValue("name"),
		ClassLabel: r.PostFormValue("class"),
		Gender:     r.PostFormValue("gender"),
	}

	var err error
	intField := func(name string, dst *int) {
		if err != nil {
			return
		}
		v := strings.TrimSpace(r.PostFormValue(name))
		if v == "" {
			return
		}
		n, perr := strconv.Atoi(v)
		if perr != nil {
			err = &fitness.ValidationError{Field: name, Err: errInvalidNumber}
			return
		}
		*dst = n
	}
	floatField := func(name string, dst *float64) {
		if err != nil {
			return
		}
		v := strings.TrimSpace(r.PostFormValue(name))
		if v == "" {
			return
		}
		f, perr := strconv.ParseFloat(v, 64)
		if perr != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			err = &fitness.ValidationError{Field: name, Err: errInvalidNumber}
			return
		}
		*dst = f
	}

	intField("classNo", &m.ClassNumber)
	intField("sitUps", &m.SitUps)
	floatField("flexibility", &m.Flexibility)
	floatField("handGrip", &m.HandGrip)
	floatField("run9min", &m.Run9Min)
	floatField("height", &m.HeightCm)
	floatField("weight", &m.WeightKg)
	return m, err
}

// formatNumber renders a float without trailing zeros, for hidden fields.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
