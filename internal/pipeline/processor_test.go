package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/16mlwood-afk/invoice-parser-sub002/constants"
	"github.com/16mlwood-afk/invoice-parser-sub002/internal/validate"
)

const germanInvoice = `Amazon.de Rechnung
Bestellnummer: 302-1234567-1234567
Bestelldatum: 15. Dezember 2023
Vielen Dank für Ihre Bestellung
Alle Preise inkl. MwSt

ASIN: B08N5WRWNW
Echo Dot (4. Generation)
155,32 €
20%
66,38 €66,38 €

Zwischensumme: 66,38 €
Versandkosten: 0,00 €
Gesamtsumme: 66,38 €`

func newProcessor() *Processor {
	return NewProcessor(validate.DefaultPolicy(), nil)
}

func TestProcessEndToEnd(t *testing.T) {
	p := newProcessor()

	res := p.Process(context.Background(), Request{ID: "inv-1", RawText: germanInvoice})
	require.Nil(t, res.Err)
	require.NotNil(t, res.Invoice)
	assert.Equal(t, "inv-1", res.ID)
	assert.Equal(t, constants.LangDE, res.Invoice.Language)
	assert.Equal(t, "302-1234567-1234567", res.Invoice.OrderNumber)
	require.Len(t, res.Invoice.Items, 1)
	assert.Equal(t, "66.38", res.Invoice.Items[0].UnitPrice.StringFixed(2))
	require.NotNil(t, res.Invoice.Validation)
	assert.True(t, res.Invoice.Validation.IsValid)
	assert.Nil(t, res.Invoice.Metadata)
}

func TestProcessFillsMissingID(t *testing.T) {
	p := newProcessor()
	res := p.Process(context.Background(), Request{RawText: germanInvoice})
	assert.NotEmpty(t, res.ID)
}

func TestProcessRecoversOnParserFailure(t *testing.T) {
	p := newProcessor()

	// No recognizable invoice fields: the parser fails hard and the
	// recovery subsystem produces a partial record with metadata.
	text := "lorem ipsum dolor sit amet\nnothing resembling an invoice here"
	res := p.Process(context.Background(), Request{ID: "inv-2", RawText: text})

	require.Nil(t, res.Err, "recoverable failures must still produce a record")
	require.NotNil(t, res.Invoice)
	require.NotNil(t, res.Invoice.Metadata, "recovery metadata must be attached")
	assert.False(t, res.Invoice.Metadata.Usable)
	assert.NotEmpty(t, res.Suggestions)
}

func TestProcessEmptyTextStillProducesResult(t *testing.T) {
	p := newProcessor()

	res := p.Process(context.Background(), Request{ID: "inv-3", RawText: ""})
	// Empty text is a recoverable parsing failure: the caller gets a
	// (unusable) partial record, never a bare error.
	require.Nil(t, res.Err)
	require.NotNil(t, res.Invoice)
	require.NotNil(t, res.Invoice.Metadata)
	assert.False(t, res.Invoice.Metadata.Usable)
}

func TestProcessCancelledContext(t *testing.T) {
	p := newProcessor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := p.Process(ctx, Request{ID: "inv-4", RawText: germanInvoice})
	require.NotNil(t, res.Err)
	assert.Nil(t, res.Invoice)
}

func TestProcessHonorsOverrides(t *testing.T) {
	p := newProcessor()

	// A language override bypasses detection entirely: the record is
	// parsed (and labeled) by the forced locale's parser.
	res := p.Process(context.Background(), Request{ID: "inv-5", RawText: germanInvoice, Language: "japanese"})
	require.Nil(t, res.Err)
	require.NotNil(t, res.Invoice)
	assert.Equal(t, constants.LangJA, res.Invoice.Language)

	res = p.Process(context.Background(), Request{ID: "inv-6", RawText: germanInvoice, Format: "business"})
	require.Nil(t, res.Err)
	require.NotNil(t, res.Invoice)
	assert.Equal(t, constants.BusinessExVat, res.Invoice.Format)
}

func TestQueueProcessBatch(t *testing.T) {
	p := newProcessor()
	q := NewQueue(p, nil, WithWorkers(3), WithQueueSize(8))
	defer q.Shutdown(context.Background())

	reqs := make([]Request, 10)
	for i := range reqs {
		reqs[i] = Request{ID: fmt.Sprintf("inv-%d", i), RawText: germanInvoice}
	}

	results := q.ProcessBatch(context.Background(), reqs)
	require.Len(t, results, len(reqs))
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("inv-%d", i), res.ID, "results must stay correlated in input order")
		require.NotNil(t, res.Invoice)
		assert.Equal(t, "302-1234567-1234567", res.Invoice.OrderNumber)
	}
}

func TestQueueShutdownDrains(t *testing.T) {
	p := newProcessor()
	q := NewQueue(p, nil, WithWorkers(2))

	done := make(chan Result, 4)
	for i := 0; i < 4; i++ {
		assert.True(t, q.Enqueue(context.Background(), Job{Request: Request{RawText: germanInvoice}, Done: done}))
	}
	q.Shutdown(context.Background())

	for i := 0; i < 4; i++ {
		res := <-done
		assert.NotNil(t, res.Invoice)
	}

	// Enqueue after shutdown is rejected, not a panic.
	assert.False(t, q.Enqueue(context.Background(), Job{Request: Request{RawText: germanInvoice}}))
}

// Shutdown must never wait on the enqueue mutex while a sender is
// blocked on a full channel; every batch request still gets exactly one
// result, rejected submissions included.
func TestProcessBatchDuringShutdown(t *testing.T) {
	p := newProcessor()
	q := NewQueue(p, nil, WithWorkers(2), WithQueueSize(2))

	var wg sync.WaitGroup
	var results []Result
	wg.Add(1)
	go func() {
		defer wg.Done()
		reqs := make([]Request, 12)
		for i := range reqs {
			reqs[i] = Request{ID: fmt.Sprintf("inv-%d", i), RawText: germanInvoice}
		}
		results = q.ProcessBatch(context.Background(), reqs)
	}()
	q.Shutdown(context.Background())
	wg.Wait()

	require.Len(t, results, 12)
	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("inv-%d", i), res.ID)
		if res.Err != nil {
			assert.Nil(t, res.Invoice)
		} else {
			assert.NotNil(t, res.Invoice)
		}
	}
}
