package productionplan

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/productionplan/core/cost"
	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/model"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tables() cost.Tables {
	return cost.Tables{
		TypeToFuel: map[string]string{"gasfired": "gas", "turbojet": "kerosine", "windturbine": "wind"},
		FreeTypes:  map[string]bool{"windturbine": true},
		CO2Cost:    map[string]decimal.Decimal{},
	}
}

func pp(name, typ, eff, pmin, pmax string) PowerplantSpec {
	return PowerplantSpec{Name: name, Type: typ, Efficiency: d(eff), Pmin: d(pmin), Pmax: d(pmax)}
}

func encode(t *testing.T, r Response) string {
	t.Helper()
	b, err := json.Marshal(r)
	require.NoError(t, err)
	return string(b)
}

func TestCalculate_Scenarios(t *testing.T) {
	fuels := map[string]decimal.Decimal{
		"gas(euro/MWh)":      d("10"),
		"kerosine(euro/MWh)": d("50"),
		"wind(%)":            d("50"),
	}
	tests := []struct {
		name   string
		load   string
		plants []PowerplantSpec
		want   string
	}{
		{
			name:   "single unit",
			load:   "100",
			plants: []PowerplantSpec{pp("u1", "gasfired", "0.5", "0", "200")},
			want:   `[{"name":"u1","p":100}]`,
		},
		{
			name:   "cheapest filled first",
			load:   "300",
			plants: []PowerplantSpec{pp("u1", "gasfired", "0.5", "50", "100"), pp("u2", "turbojet", "0.5", "0", "300")},
			want:   `[{"name":"u1","p":100},{"name":"u2","p":200}]`,
		},
		{
			name:   "remainder on first unit",
			load:   "120",
			plants: []PowerplantSpec{pp("u1", "gasfired", "0.5", "100", "200")},
			want:   `[{"name":"u1","p":120}]`,
		},
		{
			name:   "decrease pass",
			load:   "100",
			plants: []PowerplantSpec{pp("u1", "gasfired", "0.5", "0", "50"), pp("u2", "turbojet", "0.5", "80", "150")},
			want:   `[{"name":"u1","p":20},{"name":"u2","p":80}]`,
		},
		{
			name:   "derated wind first",
			load:   "250",
			plants: []PowerplantSpec{pp("g1", "gasfired", "1", "0", "500"), pp("w1", "windturbine", "1", "0", "400")},
			want:   `[{"name":"w1","p":200},{"name":"g1","p":50}]`,
		},
	}
	eng := NewEngine(tables(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Request{Load: d(tt.load), Fuels: fuels, Powerplants: tt.plants}
			require.NoError(t, req.Validate())
			res, err := eng.Calculate(req)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, encode(t, res.Response))
			assert.True(t, res.Plan.Total().Equal(d(tt.load)))
		})
	}
}

func TestCalculate_Unreachable(t *testing.T) {
	eng := NewEngine(tables(), nil)
	req := Request{
		Load:        d("1000"),
		Fuels:       map[string]decimal.Decimal{"gas(euro/MWh)": d("10")},
		Powerplants: []PowerplantSpec{pp("u1", "gasfired", "0.5", "0", "200")},
	}
	res, err := eng.Calculate(req)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, model.ErrLoadUnreachable))
}

func TestCalculate_PropagatesCoreErrors(t *testing.T) {
	eng := NewEngine(tables(), nil)
	tests := []struct {
		name  string
		fuels map[string]decimal.Decimal
		plant PowerplantSpec
		want  error
	}{
		{"malformed key", map[string]decimal.Decimal{"gas": d("1")}, pp("u1", "gasfired", "0.5", "0", "10"), model.ErrMalformedKey},
		{"unknown type", map[string]decimal.Decimal{"gas(euro/MWh)": d("1")}, pp("u1", "hydro", "0.5", "0", "10"), model.ErrUnknownUnitType},
		{"missing wind", map[string]decimal.Decimal{"gas(euro/MWh)": d("1")}, pp("w1", "windturbine", "1", "0", "10"), model.ErrUnknownFuelType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.Calculate(Request{Load: d("5"), Fuels: tt.fuels, Powerplants: []PowerplantSpec{tt.plant}})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// The response follows merit order rather than the order of the request.
// Callers that expect their own ordering must match on name.
func TestCalculate_ResponseFollowsMeritOrderNotInputOrder(t *testing.T) {
	eng := NewEngine(tables(), nil)
	req := Request{
		Load:  d("10"),
		Fuels: map[string]decimal.Decimal{"gas(euro/MWh)": d("10"), "kerosine(euro/MWh)": d("50"), "wind(%)": d("100")},
		Powerplants: []PowerplantSpec{
			pp("tj1", "turbojet", "0.3", "0", "16"),
			pp("gas1", "gasfired", "0.5", "0", "100"),
			pp("wind1", "windturbine", "1", "0", "5"),
		},
	}
	res, err := eng.Calculate(req)
	require.NoError(t, err)
	var got []string
	for _, a := range res.Response {
		got = append(got, a.Name)
	}
	assert.Equal(t, []string{"wind1", "gas1", "tj1"}, got)
}

func TestCalculate_ExamplePayload(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "payload1.json"))
	require.NoError(t, err)
	var req Request
	require.NoError(t, json.Unmarshal(data, &req))
	require.NoError(t, req.Validate())

	res, err := NewEngine(tables(), nil).Calculate(req)
	require.NoError(t, err)
	want := `[
		{"name":"windpark1","p":90},
		{"name":"windpark2","p":21.6},
		{"name":"gasfiredbig1","p":368.4},
		{"name":"gasfiredbig2","p":0},
		{"name":"gasfiredsomewhatsmaller","p":0},
		{"name":"tj1","p":0}
	]`
	assert.JSONEq(t, want, encode(t, res.Response))
}

func TestCalculate_CO2ReordersUnits(t *testing.T) {
	tb := tables()
	// kerosine 50/0.5 = 100, gas 40/0.5 = 80 -> 80 * 1.5 = 120
	tb.CO2Cost["gas"] = d("0.5")
	eng := NewEngine(tb, nil)
	req := Request{
		Load:  d("50"),
		Fuels: map[string]decimal.Decimal{"gas(euro/MWh)": d("40"), "kerosine(euro/MWh)": d("50")},
		Powerplants: []PowerplantSpec{
			pp("gas1", "gasfired", "0.5", "0", "100"),
			pp("tj1", "turbojet", "0.5", "0", "100"),
		},
	}
	res, err := eng.Calculate(req)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"tj1","p":50},{"name":"gas1","p":0}]`, encode(t, res.Response))
	assert.True(t, res.Plan.Cost().Equal(d("5000")))
}

func TestRequest_Validate(t *testing.T) {
	base := func() Request {
		return Request{
			Load:        d("10"),
			Fuels:       map[string]decimal.Decimal{"gas(euro/MWh)": d("1")},
			Powerplants: []PowerplantSpec{pp("u1", "gasfired", "0.5", "0", "10")},
		}
	}
	tests := []struct {
		name   string
		mutate func(r *Request)
	}{
		{"zero load", func(r *Request) { r.Load = d("0") }},
		{"missing fuels", func(r *Request) { r.Fuels = nil }},
		{"negative fuel", func(r *Request) { r.Fuels["gas(euro/MWh)"] = d("-1") }},
		{"missing powerplants", func(r *Request) { r.Powerplants = nil }},
		{"no name", func(r *Request) { r.Powerplants[0].Name = "" }},
		{"no type", func(r *Request) { r.Powerplants[0].Type = "" }},
		{"efficiency above one", func(r *Request) { r.Powerplants[0].Efficiency = d("1.2") }},
		{"negative pmin", func(r *Request) { r.Powerplants[0].Pmin = d("-1") }},
		{"fractional pmin", func(r *Request) { r.Powerplants[0].Pmin = d("1.5") }},
		{"zero pmax", func(r *Request) { r.Powerplants[0].Pmax = d("0") }},
		{"pmin above pmax", func(r *Request) { r.Powerplants[0].Pmin = d("20") }},
		{"duplicate name", func(r *Request) { r.Powerplants = append(r.Powerplants, r.Powerplants[0]) }},
	}
	require.NoError(t, base().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := base()
			tt.mutate(&r)
			assert.ErrorIs(t, r.Validate(), ErrInvalidPayload)
		})
	}
}

func TestRequest_EmptyPowerplantListIsValid(t *testing.T) {
	r := Request{Load: d("1"), Fuels: map[string]decimal.Decimal{}, Powerplants: []PowerplantSpec{}}
	require.NoError(t, r.Validate())
	_, err := NewEngine(tables(), nil).Calculate(r)
	assert.ErrorIs(t, err, model.ErrLoadUnreachable)
}

type recordingLogger struct {
	logger.Nop
	costs map[string]string
}

func (r *recordingLogger) Debugw(_ string, fields map[string]any) {
	r.costs[fields["unit"].(string)] = fields["cost"].(string)
}

func TestLogCosts(t *testing.T) {
	log := &recordingLogger{costs: map[string]string{}}
	eng := NewEngine(tables(), log)

	derived := model.NewPowerplant("u1", "gasfired", d("0.5"), d("0"), d("10"))
	derived.SetCost(d("10"), d("20"))
	require.NoError(t, eng.logCosts([]*model.Powerplant{derived}))
	assert.Equal(t, "20", log.costs["u1"])

	pending := model.NewPowerplant("u2", "gasfired", d("0.5"), d("0"), d("10"))
	err := eng.logCosts([]*model.Powerplant{pending})
	assert.ErrorIs(t, err, model.ErrNotDerived)
	assert.NotContains(t, log.costs, "u2")
}
