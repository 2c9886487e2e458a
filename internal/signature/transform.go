package signature

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OpKind is one of the array operations the player script scrambles with.
type OpKind int

const (
	Reverse OpKind = iota
	Swap
	Splice
)

func (k OpKind) String() string {
	switch k {
	case Reverse:
		return "reverse"
	case Swap:
		return "swap"
	case Splice:
		return "splice"
	default:
		return "unknown"
	}
}

// Op is a single step of a transform.
type Op struct {
	Kind OpKind
	Arg  int
}

// Transform is the ordered list of operations that descrambles a signature.
type Transform []Op

// Apply runs the transform over s.
func (t Transform) Apply(s string) string {
	a := []rune(s)
	for _, op := range t {
		switch op.Kind {
		case Reverse:
			for l, r := 0, len(a)-1; l < r; l, r = l+1, r-1 {
				a[l], a[r] = a[r], a[l]
			}
		case Swap:
			if len(a) == 0 {
				continue
			}
			pos := op.Arg % len(a)
			a[0], a[pos] = a[pos], a[0]
		case Splice:
			if op.Arg >= len(a) {
				a = a[:0]
				continue
			}
			a = a[op.Arg:]
		}
	}
	return string(a)
}

func (t Transform) String() string {
	parts := make([]string, len(t))
	for i, op := range t {
		if op.Kind == Reverse {
			parts[i] = op.Kind.String()
			continue
		}
		parts[i] = fmt.Sprintf("%s(%d)", op.Kind, op.Arg)
	}
	return strings.Join(parts, ",")
}

// Bodies of the helper-object members, as minified by the player build:
//
//	xy:function(a){a.reverse()}
//	xy:function(a,b){a.splice(0,b)}
//	xy:function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}
const (
	jsIdent     = `[a-zA-Z_$][a-zA-Z_0-9$]*`
	reverseBody = `:function\(a\)\{(?:return )?a\.reverse\(\)\}`
	spliceBody  = `:function\(a,b\)\{a\.splice\(0,b\)\}`
	swapBody    = `:function\(a,b\)\{var c=a\[0\];a\[0\]=a\[b(?:%a\.length)?\];a\[b(?:%a\.length)?\]=c(?:;return a)?\}`
)

// helperMembers matches the comma-separated member list of a helper object.
var helperMembers = fmt.Sprintf(`((?:(?:%[1]s%[2]s|%[1]s%[3]s|%[1]s%[4]s),?\n?)+)`,
	jsIdent, swapBody, spliceBody, reverseBody)

var (
	// Group 1 is the call sequence, group 2 the object its first call names.
	descramblePattern = regexp.MustCompile(fmt.Sprintf(
		`function(?: %[1]s)?\(a\)\{a=a\.split\(""\);\s*((?:a=)?(%[1]s)\.%[1]s\(a,\d+\);(?:(?:a=)?%[1]s\.%[1]s\(a,\d+\);)*)return a\.join\(""\)\}`,
		jsIdent))

	memberPatterns = map[OpKind]*regexp.Regexp{
		Reverse: regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|,)(%s)%s`, jsIdent, reverseBody)),
		Splice:  regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|,)(%s)%s`, jsIdent, spliceBody)),
		Swap:    regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|,)(%s)%s`, jsIdent, swapBody)),
	}
)

var errNoHelperObject = errors.New("helper object with reverse/splice/swap members not found")

// helperObjectPattern matches the declaration of the named helper object.
func helperObjectPattern(name []byte) *regexp.Regexp {
	return regexp.MustCompile(`var ` + regexp.QuoteMeta(string(name)) + `=\{` + helperMembers + `\};`)
}

// ExtractTransform finds the descramble function in a player script, then
// the helper object it calls, and translates the calls into a Transform.
func ExtractTransform(script []byte) (Transform, error) {
	fn := descramblePattern.FindSubmatch(script)
	if len(fn) < 3 {
		return nil, &Error{Kind: TransformNotFound, Err: errors.New("descramble function not found")}
	}
	calls, objName := fn[1], fn[2]

	obj := helperObjectPattern(objName).FindSubmatch(script)
	if len(obj) < 2 {
		return nil, &Error{Kind: TransformNotFound, Err: fmt.Errorf("%w: %s", errNoHelperObject, objName)}
	}
	objBody := obj[1]

	members := map[string]OpKind{}
	var names []string
	for kind, re := range memberPatterns {
		if m := re.FindSubmatch(objBody); len(m) > 1 {
			members[string(m[1])] = kind
			names = append(names, regexp.QuoteMeta(string(m[1])))
		}
	}

	callPattern, err := regexp.Compile(fmt.Sprintf(`(?:a=)?%s\.(%s)\(a,(\d+)\)`,
		regexp.QuoteMeta(string(objName)), strings.Join(names, "|")))
	if err != nil {
		return nil, &Error{Kind: TransformNotFound, Err: err}
	}

	var t Transform
	for _, call := range callPattern.FindAllSubmatch(calls, -1) {
		arg, err := strconv.Atoi(string(call[2]))
		if err != nil {
			return nil, &Error{Kind: TransformNotFound, Err: fmt.Errorf("bad argument %q", call[2])}
		}
		t = append(t, Op{Kind: members[string(call[1])], Arg: arg})
	}
	if len(t) == 0 {
		return nil, &Error{Kind: TransformNotFound, Err: fmt.Errorf("descramble function calls no member of %s", objName)}
	}
	return t, nil
}
