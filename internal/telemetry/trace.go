package telemetry

import (
	"context"
	"fmt"
	"log"
	"reflect"
	"runtime"
	"strings"
	"time"

	"billstack/config"
	"billstack/internal/core"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Trace 包一層 OTLP tracer。未啟用時 TracerProvider 為 nil，
// 所有開 span 的路徑落到 noop tracer，呼叫端不用判斷。
type Trace struct {
	TracerProvider *sdktrace.TracerProvider
	ServiceName    string
}

func NewTrace(conf *config.Configuration) (*Trace, error) {
	if conf == nil || !conf.Telemetry.Trace.Enabled {
		return &Trace{}, nil
	}
	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithEndpointURL(conf.Telemetry.Trace.EndpointUrl),
		otlptracehttp.WithRetry(otlptracehttp.RetryConfig{
			Enabled:         true,
			InitialInterval: 5 * time.Second,
			MaxInterval:     10 * time.Second,
			MaxElapsedTime:  60 * time.Second, // 超過就丟棄該批
		}),
		otlptracehttp.WithTimeout(30*time.Second),
	)
	if err != nil {
		log.Fatalf("failed to create otlp exporter: %v", err)
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(conf.App.Name),
		)),
	)

	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
	return &Trace{
		TracerProvider: provider,
		ServiceName:    conf.App.Name,
	}, nil
}

func (t *Trace) tracer() trace.Tracer {
	if t.TracerProvider == nil {
		return noop.NewTracerProvider().Tracer("noop")
	}
	return t.TracerProvider.Tracer(t.ServiceName)
}

func (t *Trace) StartSpanForLayer(
	ctx context.Context,
	spanName core.TraceSpanName,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	return t.tracer().Start(ctx, string(spanName), opts...)
}

// WithSpan 開 span 的統一入口。handler 層丟 *gin.Context 進來會
// 自動接上請求的 trace context 並以 handler 名稱命名；service 層
// 丟 context.Context 則以呼叫者方法名命名。回傳的 end 一定要呼叫，
// 帶 error 時會把 span 標成失敗。
func (t *Trace) WithSpan(parent any, name ...string) (context.Context, trace.Span, func(error)) {
	ctx, span := t.startSpan(parent, name...)
	end := func(err error) {
		t.EndSpan(span, err)
	}
	return ctx, span, end
}

func (t *Trace) startSpan(parent any, name ...string) (context.Context, trace.Span) {
	switch p := parent.(type) {
	case *gin.Context:
		spanName := overrideName(name, ginSpanName(p))
		ctx, span := t.StartSpanForLayer(t.GetTraceContext(p), core.TraceSpanName(spanName))
		p.Set(core.ContextTraceKey, ctx)
		return ctx, span
	case context.Context:
		spanName := overrideName(name, trimFuncName(callerName(3)))
		return t.StartSpanForLayer(p, core.TraceSpanName(spanName))
	default:
		// 不認得的 parent：開孤立 span，至少不崩
		return t.StartSpanForLayer(context.Background(), core.TraceSpanName(overrideName(name, "unknown")))
	}
}

func (t *Trace) EndSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// GetTraceContext 取本請求目前最新的 trace context；
// middleware 每開一層 span 就會把它塞回 gin.Context。
func (t *Trace) GetTraceContext(c *gin.Context) context.Context {
	if ctx, ok := c.Get(core.ContextTraceKey); ok {
		return ctx.(context.Context)
	}
	return c.Request.Context()
}

// ApplyTraceAttributes 把帶 `trace:"..."` tag 的欄位展成 span attribute。
// struct 與非 nil 指標會遞迴；map[string]T 以 tag.key 展開。
func (t *Trace) ApplyTraceAttributes(span trace.Span, obj any) {
	if span == nil || obj == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			span.RecordError(fmt.Errorf("ApplyTraceAttributes panic: %v", r))
		}
	}()
	val := reflect.ValueOf(obj)
	typ := reflect.TypeOf(obj)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}

	for i := 0; i < typ.NumField(); i++ {
		tag := typ.Field(i).Tag.Get("trace")
		if tag == "" {
			continue
		}
		fieldVal := val.Field(i)
		if !fieldVal.IsValid() || !fieldVal.CanInterface() {
			continue
		}
		t.applyFieldAttribute(span, tag, fieldVal)
	}
}

func (t *Trace) applyFieldAttribute(span trace.Span, tag string, fieldVal reflect.Value) {
	switch fieldVal.Kind() {
	case reflect.String:
		span.SetAttributes(attribute.String(tag, fieldVal.String()))
	case reflect.Bool:
		span.SetAttributes(attribute.Bool(tag, fieldVal.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		span.SetAttributes(attribute.Int64(tag, fieldVal.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		span.SetAttributes(attribute.Int64(tag, int64(fieldVal.Uint())))
	case reflect.Float32, reflect.Float64:
		span.SetAttributes(attribute.Float64(tag, fieldVal.Float()))
	case reflect.Slice, reflect.Array:
		if fieldVal.Type().Elem().Kind() == reflect.String {
			values := make([]string, 0, fieldVal.Len())
			for j := 0; j < fieldVal.Len(); j++ {
				values = append(values, fieldVal.Index(j).String())
			}
			span.SetAttributes(attribute.StringSlice(tag, values))
		}
	case reflect.Struct:
		t.ApplyTraceAttributes(span, fieldVal.Interface())
	case reflect.Ptr:
		if !fieldVal.IsNil() {
			t.ApplyTraceAttributes(span, fieldVal.Interface())
		}
	case reflect.Map:
		if fieldVal.Type().Key().Kind() != reflect.String {
			return
		}
		for _, key := range fieldVal.MapKeys() {
			mapKey := tag + "." + key.String()
			mapVal := fieldVal.MapIndex(key)
			switch mapVal.Kind() {
			case reflect.String:
				span.SetAttributes(attribute.String(mapKey, mapVal.String()))
			case reflect.Int, reflect.Int64:
				span.SetAttributes(attribute.Int64(mapKey, mapVal.Int()))
			case reflect.Float64, reflect.Float32:
				span.SetAttributes(attribute.Float64(mapKey, mapVal.Float()))
			case reflect.Bool:
				span.SetAttributes(attribute.Bool(mapKey, mapVal.Bool()))
			}
		}
	}
}

// ==== span 命名 ====

func overrideName(name []string, fallback string) string {
	if len(name) > 0 && strings.TrimSpace(name[0]) != "" {
		return name[0]
	}
	if fallback == "" {
		return "unknown"
	}
	return fallback
}

// trimFuncName runtime 的完整函式名 -> "Type.Method"
func trimFuncName(full string) string {
	if i := strings.LastIndex(full, "/"); i >= 0 {
		full = full[i+1:]
	}
	// 編譯器後綴：-fm、.funcN
	full = strings.TrimSuffix(full, "-fm")
	if i := strings.LastIndex(full, ".func"); i >= 0 {
		full = full[:i]
	}
	// 去掉 package 前綴
	if i := strings.Index(full, "."); i >= 0 {
		full = full[i+1:]
	}
	replacer := strings.NewReplacer("(*", "", "(", "", ")", "")
	full = replacer.Replace(full)
	// 泛型型參不進 span 名稱
	if i := strings.Index(full, "["); i >= 0 {
		if j := strings.Index(full, "]"); j > i {
			full = full[:i] + full[j+1:]
		}
	}
	return full
}

func ginSpanName(c *gin.Context) string {
	if handlerName := c.HandlerName(); handlerName != "" {
		return trimFuncName(handlerName)
	}
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return c.Request.Method + " " + route
}

func callerName(skip int) string {
	pc, _, _, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		return fn.Name()
	}
	return ""
}
