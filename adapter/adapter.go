// Package adapter turns a configured datasource into a row source for a foreign table.
//
// An Adapter is initialized once with the table options and declared columns.
// Each Produce call projects the requested columns and filters by the qualifiers
// it can honor, reporting back every qualifier it can't.
package adapter

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw"
	"github.com/timelyfdw/timelyfdw/config"
	"github.com/timelyfdw/timelyfdw/datasources"
	"github.com/timelyfdw/timelyfdw/execution"
	"github.com/timelyfdw/timelyfdw/physical"
)

type Adapter struct {
	source     string
	schema     physical.Schema
	datasource datasources.Datasource

	logger  log.Logger
	metrics *Metrics
}

type Option func(*Adapter)

func WithLogger(logger log.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(a *Adapter) {
		a.metrics = metrics
	}
}

// Initialize validates the options and declared columns and creates the datasource named by the "source" option.
// It doesn't reach the underlying data set, so all its errors are ConfigErrors.
func Initialize(ctx context.Context, registry *datasources.Registry, options physical.Options, columns []physical.ColumnDefinition, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.metrics == nil {
		a.metrics = NewMetrics(nil)
	}

	source, err := config.GetString(options, "source")
	if err != nil {
		return nil, &ConfigError{Option: "source", Err: errors.Cause(err)}
	}
	factory, err := registry.Get(source)
	if err != nil {
		return nil, &ConfigError{Option: "source", Err: err}
	}

	schema, err := physical.NewSchema(columns)
	if err != nil {
		return nil, &ConfigError{Option: "columns", Err: err}
	}

	ds, err := factory(ctx, options, schema)
	if err != nil {
		var optionErr *config.OptionError
		if errors.As(err, &optionErr) {
			return nil, &ConfigError{Option: optionErr.Option, Err: optionErr.Err}
		}
		return nil, &ConfigError{Err: err}
	}

	a.source = source
	a.schema = schema
	a.datasource = ds

	level.Info(a.logger).Log(
		"msg", "initialized adapter",
		"source", source,
		"options", fmt.Sprintf("%v", options.Redacted()),
		"columns", strings.Join(schema.Names(), ","),
	)

	return a, nil
}

func (a *Adapter) Schema() physical.Schema {
	return a.schema
}

// Describe returns the declared columns the source can currently serve.
func (a *Adapter) Describe(ctx context.Context) ([]string, error) {
	available, err := a.datasource.Describe(ctx)
	if err != nil {
		return nil, &SourceUnavailableError{Source: a.source, Err: err}
	}
	return available, nil
}

type Result struct {
	ID ulid.ULID
	// Rows must be closed by the caller if it stops reading before the end of the stream.
	Rows execution.RecordStream
	// Honored qualifiers are guaranteed to hold for every row, with values coerced to the column types.
	Honored []physical.Qualifier
	// PushedDown are the honored qualifiers the source used to narrow its scan.
	PushedDown  []physical.Qualifier
	Unsupported []*UnsupportedOperatorError
}

// Unhonored returns the qualifiers the caller has to re-check.
func (r *Result) Unhonored() []physical.Qualifier {
	return unsupportedQualifiers(r.Unsupported)
}

func (r *Result) Close() error {
	return r.Rows.Close()
}

// Produce returns a lazy stream of the requested columns of all rows satisfying the honored qualifiers.
// Qualifiers which can't be honored are reported in the Result and ignored.
func (a *Adapter) Produce(ctx context.Context, columns []string, qualifiers []physical.Qualifier) (_ *Result, err error) {
	id := ulid.MustNew(ulid.Now(), rand.Reader)
	logger := log.With(a.logger, "id", id.String(), "source", a.source)

	a.metrics.produceCalls.WithLabelValues(a.source).Inc()
	defer func() {
		if err != nil {
			a.metrics.produceErrors.WithLabelValues(a.source, errorKind(err)).Inc()
			level.Error(logger).Log("msg", "produce failed", "err", err)
		}
	}()

	for _, column := range columns {
		if _, ok := a.schema.Lookup(column); !ok {
			return nil, &SchemaError{Column: column, Declared: a.schema.Names()}
		}
	}

	available, err := a.Describe(ctx)
	if err != nil {
		return nil, err
	}

	honored, predicates, unsupported := a.classify(qualifiers, available)
	_, pushedDown := a.datasource.PushDownPredicates(honored)

	a.metrics.qualifiers.WithLabelValues(a.source, outcomeHonored).Add(float64(len(honored)))
	a.metrics.qualifiers.WithLabelValues(a.source, outcomePushedDown).Add(float64(len(pushedDown)))
	a.metrics.qualifiers.WithLabelValues(a.source, outcomeUnsupported).Add(float64(len(unsupported)))

	needed := make(map[string]struct{}, len(columns)+len(honored))
	for _, column := range columns {
		needed[column] = struct{}{}
	}
	for _, column := range physical.Columns(honored) {
		needed[column] = struct{}{}
	}
	fields := make([]string, 0, len(needed))
	for _, name := range datasources.AvailableFields(a.schema.Names(), available) {
		if _, ok := needed[name]; ok {
			fields = append(fields, name)
		}
	}

	stream, err := a.datasource.Scan(ctx, fields, pushedDown)
	if err != nil {
		return nil, &SourceUnavailableError{Source: a.source, Err: err}
	}

	level.Debug(logger).Log(
		"msg", "producing rows",
		"columns", strings.Join(columns, ","),
		"scanned", strings.Join(fields, ","),
		"honored", qualifiersString(honored),
		"pushed_down", qualifiersString(pushedDown),
		"unsupported", qualifiersString(unsupportedQualifiers(unsupported)),
	)

	source := &sourceStream{
		adapter: a,
		source:  stream,
	}
	rows := &resultStream{
		adapter: a,
		logger:  logger,
		source:  execution.NewProjectedStream(columns, execution.NewFilteredStream(predicates, source)),
	}

	return &Result{
		ID:          id,
		Rows:        rows,
		Honored:     honored,
		PushedDown:  pushedDown,
		Unsupported: unsupported,
	}, nil
}

// classify coerces the qualifiers which can be evaluated and reports the rest.
func (a *Adapter) classify(qualifiers []physical.Qualifier, available []string) (honored []physical.Qualifier, predicates []*execution.Predicate, unsupported []*UnsupportedOperatorError) {
	availableSet := make(map[string]struct{}, len(available))
	for _, name := range available {
		availableSet[name] = struct{}{}
	}

	for _, qualifier := range qualifiers {
		coerced, reason := a.coerce(qualifier, availableSet)
		if reason == "" {
			pred, err := execution.NewPredicate(coerced)
			if err == nil {
				honored = append(honored, coerced)
				predicates = append(predicates, pred)
				continue
			}
			reason = err.Error()
		}
		unsupported = append(unsupported, &UnsupportedOperatorError{
			Qualifier: qualifier,
			Reason:    reason,
		})
	}
	return
}

// coerce checks whether the qualifier can be evaluated against its column and converts its value to the column type.
// The returned reason is empty on success.
func (a *Adapter) coerce(qualifier physical.Qualifier, available map[string]struct{}) (physical.Qualifier, string) {
	op := qualifier.Operator
	if !op.Known() {
		return qualifier, fmt.Sprintf("operator '%s' is not supported", op)
	}
	column, ok := a.schema.Lookup(qualifier.Column)
	if !ok {
		return qualifier, fmt.Sprintf("column %s is not declared", qualifier.Column)
	}
	if _, ok := available[qualifier.Column]; !ok {
		return qualifier, fmt.Sprintf("column %s is not available in source %s", qualifier.Column, a.source)
	}

	switch {
	case op.NullCheck():
		return physical.NewQualifier(qualifier.Column, op, timelyfdw.NewNull()), ""

	case op.SetOperator():
		if !column.Type.Scalar() {
			return qualifier, fmt.Sprintf("operator '%s' is not supported on %s column %s", op, column.Type, column.Name)
		}
		if qualifier.Value.Type.TypeID != timelyfdw.TypeIDList {
			return qualifier, fmt.Sprintf("operator '%s' requires a list value, got %s", op, qualifier.Value.Type)
		}
		value, ok := qualifier.Value.CoerceTo(timelyfdw.ListOf(column.Type))
		if !ok {
			return qualifier, fmt.Sprintf("value %s can't be compared with %s column %s", qualifier.Value, column.Type, column.Name)
		}
		return physical.NewQualifier(qualifier.Column, op, value), ""

	case op.PatternOperator():
		if column.Type.TypeID != timelyfdw.TypeIDString {
			return qualifier, fmt.Sprintf("operator '%s' is not supported on %s column %s", op, column.Type, column.Name)
		}
		if !qualifier.Value.IsNull() && qualifier.Value.Type.TypeID != timelyfdw.TypeIDString {
			return qualifier, fmt.Sprintf("operator '%s' requires a string pattern, got %s", op, qualifier.Value.Type)
		}
		return qualifier, ""

	default:
		if !column.Type.Scalar() {
			return qualifier, fmt.Sprintf("operator '%s' is not supported on %s column %s", op, column.Type, column.Name)
		}
		value, ok := qualifier.Value.CoerceTo(column.Type)
		if !ok {
			return qualifier, fmt.Sprintf("value %s can't be compared with %s column %s", qualifier.Value, column.Type, column.Name)
		}
		return physical.NewQualifier(qualifier.Column, op, value), ""
	}
}

// Close releases the resources held by the datasource, like connection pools.
func (a *Adapter) Close() error {
	if closer, ok := a.datasource.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return errors.Wrap(err, "couldn't close datasource")
		}
	}
	return nil
}

// sourceStream counts scanned rows and reports read failures as SourceUnavailableErrors.
type sourceStream struct {
	adapter *Adapter
	source  execution.RecordStream
}

func (s *sourceStream) Next(ctx context.Context) (execution.Row, error) {
	row, err := s.source.Next(ctx)
	if err != nil {
		if err == execution.ErrEndOfStream || errors.Cause(err) == ctx.Err() {
			return nil, err
		}
		return nil, &SourceUnavailableError{Source: s.adapter.source, Err: err}
	}
	s.adapter.metrics.rowsScanned.WithLabelValues(s.adapter.source).Inc()
	return row, nil
}

func (s *sourceStream) Close() error {
	return s.source.Close()
}

type resultStream struct {
	adapter *Adapter
	logger  log.Logger
	source  execution.RecordStream
	count   int
}

func (s *resultStream) Next(ctx context.Context) (execution.Row, error) {
	row, err := s.source.Next(ctx)
	if err == execution.ErrEndOfStream {
		level.Debug(s.logger).Log("msg", "stream finished", "rows", s.count)
		return nil, err
	} else if err != nil {
		s.adapter.metrics.produceErrors.WithLabelValues(s.adapter.source, errorKind(err)).Inc()
		level.Error(s.logger).Log("msg", "stream failed", "rows", s.count, "err", err)
		return nil, err
	}
	s.count++
	s.adapter.metrics.rowsProduced.WithLabelValues(s.adapter.source).Inc()
	return row, nil
}

func (s *resultStream) Close() error {
	return s.source.Close()
}

func unsupportedQualifiers(unsupported []*UnsupportedOperatorError) []physical.Qualifier {
	out := make([]physical.Qualifier, len(unsupported))
	for i := range unsupported {
		out[i] = unsupported[i].Qualifier
	}
	return out
}

func qualifiersString(qualifiers []physical.Qualifier) string {
	parts := make([]string, len(qualifiers))
	for i := range qualifiers {
		parts[i] = qualifiers[i].String()
	}
	return strings.Join(parts, " AND ")
}
