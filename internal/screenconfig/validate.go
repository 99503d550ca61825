package screenconfig

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// 에러 필드명을 YAML 키로
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

var hhmm = regexp.MustCompile(`^\d{2}:\d{2}$`)

// maxDailyLimit is the exchange's ±10% daily price band
var maxDailyLimit = decimal.RequireFromString("0.1")

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return toValidationError(fieldErrs[0])
		}
		return err
	}

	// === Session ===
	if err := validateHHMM(cfg.Session.Cutoff); err != nil {
		return ValidationError{"session.cutoff", err.Error()}
	}

	// === Screening ===
	threshold, err := decimal.NewFromString(cfg.Screening.LimitUpThreshold)
	if err != nil {
		return ValidationError{"screening.limit_up_threshold", "must be a decimal"}
	}
	if !threshold.IsPositive() || threshold.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return ValidationError{"screening.limit_up_threshold", "must be in (0, 1)"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 상한가(10%) 초과 기준 → 후보 없음
	if t, err := decimal.NewFromString(cfg.Screening.LimitUpThreshold); err == nil && t.GreaterThan(maxDailyLimit) {
		warnings = append(warnings, Warning{
			Code:    "THRESHOLD_ABOVE_LIMIT",
			Message: "limit_up_threshold > 10%: no security can qualify",
		})
	}

	if cfg.Flow.LotSize != 1 && cfg.Flow.LotSize != 1000 {
		warnings = append(warnings, Warning{
			Code:    "UNUSUAL_LOT_SIZE",
			Message: fmt.Sprintf("lot_size=%d: Taiwan board lots are 1000 shares", cfg.Flow.LotSize),
		})
	}

	if cfg.Flow.NetBuyThreshold != nil && *cfg.Flow.NetBuyThreshold == 0 {
		warnings = append(warnings, Warning{
			Code:    "ZERO_NET_BUY",
			Message: "net_buy_threshold=0: every net buyer on the watch-list is a hit",
		})
	}

	seen := make(map[string]bool, len(cfg.Flow.WatchList))
	for _, name := range cfg.Flow.WatchList {
		if seen[name] {
			warnings = append(warnings, Warning{
				Code:    "DUPLICATE_BROKER",
				Message: fmt.Sprintf("watch_list entry %q listed twice", name),
			})
		}
		seen[name] = true
	}

	return warnings
}

// === Helper Functions ===

func validateHHMM(s string) error {
	if !hhmm.MatchString(s) {
		return errors.New("must be HH:MM format")
	}
	_, err := time.Parse("15:04", s)
	return err
}

// toValidationError maps a validator field error to a YAML path
func toValidationError(fe validator.FieldError) ValidationError {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:] // "Config." 제거
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "required"
	case "min":
		msg = fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gte":
		msg = fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be <= %s", fe.Param())
	default:
		msg = fmt.Sprintf("failed validation: %s", fe.Tag())
	}

	return ValidationError{Field: field, Message: msg}
}
