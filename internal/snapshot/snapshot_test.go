package snapshot_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joblog/internal/core"
	"joblog/internal/snapshot"
)

func sampleJobs() []core.JobRecord {
	return []core.JobRecord{
		{
			ID:          "a1",
			Date:        core.NewDate(2025, 1, 1),
			CompanyName: "Acme",
			Address:     "12 Elm St",
			City:        "Springfield",
			Yards:       decimal.RequireFromString("3.5"),
			Total:       core.Money{Cents: 10000},
			Payment:     core.CheckPayment("1042"),
			Status:      core.Unpaid,
			Notes:       "gate code 4411",
		},
		{
			ID:      "b2",
			Date:    core.NewDate(2025, 1, 5),
			Address: "9 Oak Ave",
			City:    "Shelbyville",
			Yards:   decimal.RequireFromString("0"),
			Total:   core.Money{Cents: 0},
			Payment: core.ChargePayment(core.BillingInfo{CompanyName: "Oak HOA", Email: "board@oak.test"}),
			Status:  core.Paid,
		},
		{
			ID:      "c3",
			Date:    core.NewDate(2025, 2, 10),
			Address: "1 Pine Rd",
			City:    "Capital City",
			Yards:   decimal.RequireFromString("12.25"),
			Total:   core.Money{Cents: 45050},
			Payment: core.NewPayment(core.Zelle),
			Status:  core.Paid,
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	jobs := sampleJobs()
	data, err := snapshot.Encode(jobs, time.Date(2025, 2, 11, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":1`)

	got, err := snapshot.Decode(data)
	require.NoError(t, err)
	require.Len(t, got, len(jobs))

	for i := range jobs {
		assert.Equal(t, jobs[i].ID, got[i].ID)
		assert.Equal(t, jobs[i].Date.String(), got[i].Date.String())
		assert.Equal(t, jobs[i].CompanyName, got[i].CompanyName)
		assert.Equal(t, jobs[i].Address, got[i].Address)
		assert.Equal(t, jobs[i].City, got[i].City)
		assert.True(t, jobs[i].Yards.Equal(got[i].Yards), "yards %s vs %s", jobs[i].Yards, got[i].Yards)
		assert.Equal(t, jobs[i].Total, got[i].Total)
		assert.Equal(t, jobs[i].Payment, got[i].Payment)
		assert.Equal(t, jobs[i].Status, got[i].Status)
		assert.Equal(t, jobs[i].Notes, got[i].Notes)
	}
}

func TestEncodeOmitsIrrelevantPayload(t *testing.T) {
	data, err := snapshot.Encode(sampleJobs()[2:], time.Now())
	require.NoError(t, err)
	assert.NotContains(t, string(data), "checkNumber")
	assert.NotContains(t, string(data), "billingInfo")
}

func TestDecodeLegacyArray(t *testing.T) {
	legacy := `[{"id":"1","date":"2025-01-04","address":"5 Main","city":"Ogdenville","yards":"2","total":"80","paymentMethod":"cash","paymentStatus":"Paid","notes":""}]`
	got, err := snapshot.Decode([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, core.Cash, got[0].Payment.Method())
	assert.Equal(t, int64(8000), got[0].Total.Cents)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"empty":            ``,
		"not json":         `{{{`,
		"future version":   `{"version":9,"jobs":[]}`,
		"bad date":         `[{"id":"1","date":"soon","address":"a","city":"c","yards":"1","total":"1","paymentMethod":"Cash","paymentStatus":"Paid"}]`,
		"negative total":   `[{"id":"1","date":"2025-01-01","address":"a","city":"c","yards":"1","total":"-1","paymentMethod":"Cash","paymentStatus":"Paid"}]`,
		"negative yards":   `[{"id":"1","date":"2025-01-01","address":"a","city":"c","yards":"-2","total":"1","paymentMethod":"Cash","paymentStatus":"Paid"}]`,
		"unknown method":   `[{"id":"1","date":"2025-01-01","address":"a","city":"c","yards":"1","total":"1","paymentMethod":"Bitcoin","paymentStatus":"Paid"}]`,
		"payload mismatch": `[{"id":"1","date":"2025-01-01","address":"a","city":"c","yards":"1","total":"1","paymentMethod":"Cash","paymentStatus":"Paid","checkNumber":"7"}]`,
		"missing address":  `[{"id":"1","date":"2025-01-01","address":"","city":"c","yards":"1","total":"1","paymentMethod":"Cash","paymentStatus":"Paid"}]`,
		"duplicate ids": `[{"id":"1","date":"2025-01-01","address":"a","city":"c","yards":"1","total":"1","paymentMethod":"Cash","paymentStatus":"Paid"},
			{"id":"1","date":"2025-01-02","address":"a","city":"c","yards":"1","total":"1","paymentMethod":"Cash","paymentStatus":"Paid"}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := snapshot.Decode([]byte(doc))
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, snapshot.ErrDecode))
			var derr *snapshot.DecodeError
			assert.True(t, errors.As(err, &derr))
		})
	}
}

func TestDecodeEmptyCollection(t *testing.T) {
	data, err := snapshot.Encode(nil, time.Now())
	require.NoError(t, err)
	got, err := snapshot.Decode(data)
	require.NoError(t, err)
	assert.Empty(t, got)
}
