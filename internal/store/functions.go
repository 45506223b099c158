package store

import (
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/mattn/go-sqlite3"
)

// DriverName is the database/sql driver registered by this package: the
// SQLite driver with MySQL-compatible functions installed on every
// connection.
const DriverName = "sqlite3_quarry"

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{ConnectHook: registerFunctions})
}

// registerFunctions installs the MySQL functions compiled fragments may use.
func registerFunctions(conn *sqlite3.SQLiteConn) error {
	functions := []struct {
		name string
		impl any
		pure bool
	}{
		{"FIND_IN_SET", findInSet, true},
		{"FIELD", field, true},
		{"REGEXP", matchRegexp, true},
		{"RAND", rand.Float64, false},
		{"MD5", md5Hex, true},
	}
	for _, fn := range functions {
		if err := conn.RegisterFunc(fn.name, fn.impl, fn.pure); err != nil {
			return fmt.Errorf("register %s: %w", fn.name, err)
		}
	}
	return nil
}

// findInSet returns the 1-based position of needle in the comma-separated
// list, or 0. Like MySQL, a needle containing a comma never matches.
func findInSet(needle, list any) int64 {
	n, l := text(needle), text(list)
	if needle == nil || list == nil || strings.Contains(n, ",") || l == "" {
		return 0
	}
	for i, item := range strings.Split(l, ",") {
		if item == n {
			return int64(i + 1)
		}
	}
	return 0
}

// field returns the 1-based position of v among candidates, or 0.
func field(v any, candidates ...any) int64 {
	if v == nil {
		return 0
	}
	s := text(v)
	for i, c := range candidates {
		if c != nil && text(c) == s {
			return int64(i + 1)
		}
	}
	return 0
}

var regexps sync.Map

// matchRegexp implements "value REGEXP pattern"; SQLite passes the pattern
// first.
func matchRegexp(pattern, v any) (bool, error) {
	if pattern == nil || v == nil {
		return false, nil
	}
	p := text(pattern)
	re, ok := regexps.Load(p)
	if !ok {
		compiled, err := regexp.Compile(p)
		if err != nil {
			return false, err
		}
		re, _ = regexps.LoadOrStore(p, compiled)
	}
	return re.(*regexp.Regexp).MatchString(text(v)), nil
}

func md5Hex(v any) string {
	sum := md5.Sum([]byte(text(v)))
	return hex.EncodeToString(sum[:])
}

// text converts a SQLite value to its string form.
func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(val)
	}
}
