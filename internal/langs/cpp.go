package langs

import (
	"fmt"
	"strings"

	"github.com/fngrade/grader/internal/typespec"
)

// Cpp returns the C++ language definition. C++ has a distinct compile
// step with its own timeout; the harness embeds a minimal recursive
// descent JSON parser because the target runtime has no JSON facility.
func Cpp() *Language {
	return &Language{
		ID:               "cpp",
		Name:             "C++17 (g++)",
		SourceFname:      "solution.cpp",
		HarnessFname:     "main.cpp",
		CompileArgv:      []string{"g++", "-O2", "-std=c++17", "-o", "main", "main.cpp"},
		RunArgv:          []string{"./main"},
		Synthesize:       synthesizeCpp,
		ParseDiagnostics: parseGccDiagnostics,
	}
}

// cppTypeName maps a TypeTag to its native C++ type.
func cppTypeName(t *typespec.Type) string {
	switch t.Kind {
	case typespec.Int:
		return "int"
	case typespec.Long:
		return "long long"
	case typespec.Double:
		return "double"
	case typespec.Boolean:
		return "bool"
	case typespec.Char:
		return "char"
	case typespec.String:
		return "std::string"
	default:
		return "std::vector<" + cppTypeName(t.Elem) + ">"
	}
}

// Decode/encode templates; %[1]s is the expression being converted.
var cppScalarCodecs = map[typespec.Kind]scalarCodec{
	typespec.Int:     {dec: "(int)(%[1]s).number", enc: "std::to_string(%[1]s)"},
	typespec.Long:    {dec: "(long long)(%[1]s).number", enc: "std::to_string(%[1]s)"},
	typespec.Double:  {dec: "(%[1]s).number", enc: "harness::encodeDouble(%[1]s)"},
	typespec.Boolean: {dec: "(%[1]s).boolean", enc: `((%[1]s) ? "true" : "false")`},
	typespec.Char:    {dec: "((%[1]s).str.empty() ? '\\0' : (%[1]s).str[0])", enc: "harness::jsonEscape(std::string(1, (%[1]s)))"},
	typespec.String:  {dec: "(%[1]s).str", enc: "harness::jsonEscape(%[1]s)"},
}

func cppDecodeExpr(expr string, t *typespec.Type, depth int) (string, error) {
	if t.Scalar() {
		codec, ok := cppScalarCodecs[t.Kind]
		if !ok {
			return "", fmt.Errorf("unsupported type %q for cpp", t)
		}
		return fmt.Sprintf(codec.dec, expr), nil
	}
	elem := fmt.Sprintf("_e%d", depth)
	inner, err := cppDecodeExpr(elem, t.Elem, depth+1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"[&]{ %s _v%d; for (const auto& %s : (%s).items) { _v%d.push_back(%s); } return _v%d; }()",
		cppTypeName(t), depth, elem, expr, depth, inner, depth), nil
}

func cppEncodeExpr(expr string, t *typespec.Type, depth int) (string, error) {
	if t.Scalar() {
		codec, ok := cppScalarCodecs[t.Kind]
		if !ok {
			return "", fmt.Errorf("unsupported type %q for cpp", t)
		}
		return fmt.Sprintf(codec.enc, expr), nil
	}
	elem := fmt.Sprintf("_e%d", depth)
	inner, err := cppEncodeExpr(elem, t.Elem, depth+1)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		`[&]{ std::string _s%d = "["; bool _f%d = true; for (const auto& %s : (%s)) { if (!_f%d) _s%d += ","; _f%d = false; _s%d += %s; } _s%d += "]"; return _s%d; }()`,
		depth, depth, elem, expr, depth, depth, depth, depth, inner, depth, depth), nil
}

// cppRuntime is emitted once per harness: a JSON value type, a recursive
// descent parser sufficient for the single-level stdin object (and any
// nested arrays inside it), and output encoding helpers.
const cppRuntime = `namespace harness {

struct JsonValue {
    enum Kind { Null, Boolean, Number, String, Array, Object };
    Kind kind = Null;
    bool boolean = false;
    double number = 0;
    std::string str;
    std::vector<JsonValue> items;
    std::vector<std::pair<std::string, JsonValue>> fields;

    const JsonValue& field(const std::string& name) const {
        for (const auto& f : fields) {
            if (f.first == name) return f.second;
        }
        throw std::runtime_error("missing input field: " + name);
    }
};

struct JsonParser {
    const std::string& src;
    size_t pos = 0;

    explicit JsonParser(const std::string& s) : src(s) {}

    void skipWs() {
        while (pos < src.size() && std::isspace((unsigned char)src[pos])) pos++;
    }

    char peek() {
        skipWs();
        if (pos >= src.size()) throw std::runtime_error("unexpected end of json input");
        return src[pos];
    }

    void expect(char c) {
        if (peek() != c) {
            throw std::runtime_error(std::string("expected '") + c + "' in json input");
        }
        pos++;
    }

    void expectLiteral(const std::string& lit) {
        skipWs();
        if (src.compare(pos, lit.size(), lit) != 0) {
            throw std::runtime_error("invalid json literal");
        }
        pos += lit.size();
    }

    JsonValue parse() {
        char c = peek();
        if (c == '{') return parseObject();
        if (c == '[') return parseArray();
        if (c == '"') return parseString();
        if (c == 't' || c == 'f') return parseBool();
        if (c == 'n') return parseNull();
        return parseNumber();
    }

    JsonValue parseObject() {
        JsonValue v;
        v.kind = JsonValue::Object;
        expect('{');
        if (peek() == '}') { pos++; return v; }
        while (true) {
            JsonValue key = parseString();
            expect(':');
            v.fields.emplace_back(key.str, parse());
            if (peek() == ',') { pos++; continue; }
            expect('}');
            break;
        }
        return v;
    }

    JsonValue parseArray() {
        JsonValue v;
        v.kind = JsonValue::Array;
        expect('[');
        if (peek() == ']') { pos++; return v; }
        while (true) {
            v.items.push_back(parse());
            if (peek() == ',') { pos++; continue; }
            expect(']');
            break;
        }
        return v;
    }

    JsonValue parseString() {
        JsonValue v;
        v.kind = JsonValue::String;
        expect('"');
        while (true) {
            if (pos >= src.size()) throw std::runtime_error("unterminated json string");
            char c = src[pos++];
            if (c == '"') break;
            if (c != '\\') { v.str += c; continue; }
            if (pos >= src.size()) throw std::runtime_error("unterminated json escape");
            char esc = src[pos++];
            switch (esc) {
                case '"': v.str += '"'; break;
                case '\\': v.str += '\\'; break;
                case '/': v.str += '/'; break;
                case 'n': v.str += '\n'; break;
                case 't': v.str += '\t'; break;
                case 'r': v.str += '\r'; break;
                case 'b': v.str += '\b'; break;
                case 'f': v.str += '\f'; break;
                case 'u': {
                    if (pos + 4 > src.size()) throw std::runtime_error("bad unicode escape");
                    unsigned int cp = (unsigned int)std::stoul(src.substr(pos, 4), nullptr, 16);
                    pos += 4;
                    if (cp < 0x80) {
                        v.str += (char)cp;
                    } else if (cp < 0x800) {
                        v.str += (char)(0xC0 | (cp >> 6));
                        v.str += (char)(0x80 | (cp & 0x3F));
                    } else {
                        v.str += (char)(0xE0 | (cp >> 12));
                        v.str += (char)(0x80 | ((cp >> 6) & 0x3F));
                        v.str += (char)(0x80 | (cp & 0x3F));
                    }
                    break;
                }
                default: throw std::runtime_error("unknown json escape");
            }
        }
        return v;
    }

    JsonValue parseBool() {
        JsonValue v;
        v.kind = JsonValue::Boolean;
        if (peek() == 't') { expectLiteral("true"); v.boolean = true; }
        else { expectLiteral("false"); v.boolean = false; }
        return v;
    }

    JsonValue parseNull() {
        expectLiteral("null");
        return JsonValue();
    }

    JsonValue parseNumber() {
        skipWs();
        size_t start = pos;
        while (pos < src.size() &&
               (std::isdigit((unsigned char)src[pos]) || src[pos] == '-' ||
                src[pos] == '+' || src[pos] == '.' || src[pos] == 'e' || src[pos] == 'E')) {
            pos++;
        }
        if (start == pos) throw std::runtime_error("invalid json number");
        JsonValue v;
        v.kind = JsonValue::Number;
        v.number = std::stod(src.substr(start, pos - start));
        return v;
    }
};

std::string jsonEscape(const std::string& s) {
    std::string out = "\"";
    for (char c : s) {
        switch (c) {
            case '"': out += "\\\""; break;
            case '\\': out += "\\\\"; break;
            case '\n': out += "\\n"; break;
            case '\t': out += "\\t"; break;
            case '\r': out += "\\r"; break;
            default: out += c;
        }
    }
    out += "\"";
    return out;
}

std::string encodeDouble(double v) {
    std::ostringstream out;
    out.precision(17);
    out << v;
    return out.str();
}

}  // namespace harness
`

func synthesizeCpp(sig *typespec.Signature, sentinel string) (string, error) {
	var b strings.Builder

	b.WriteString("#include <cctype>\n")
	b.WriteString("#include <iostream>\n")
	b.WriteString("#include <iterator>\n")
	b.WriteString("#include <sstream>\n")
	b.WriteString("#include <stdexcept>\n")
	b.WriteString("#include <string>\n")
	b.WriteString("#include <utility>\n")
	b.WriteString("#include <vector>\n\n")
	b.WriteString("#include \"solution.cpp\"\n\n")
	b.WriteString(cppRuntime)
	b.WriteString("\n")

	b.WriteString("int main() {\n")
	b.WriteString("    std::string _input((std::istreambuf_iterator<char>(std::cin)),\n")
	b.WriteString("                       std::istreambuf_iterator<char>());\n")
	b.WriteString("    try {\n")
	b.WriteString("        harness::JsonParser _parser(_input);\n")
	b.WriteString("        harness::JsonValue _data = _parser.parse();\n")

	var argNames []string
	for _, p := range sig.Params {
		dec, err := cppDecodeExpr(fmt.Sprintf("_data.field(%q)", p.Name), p.Type, 0)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "        %s %s = %s;\n", cppTypeName(p.Type), p.Name, dec)
		argNames = append(argNames, p.Name)
	}

	fmt.Fprintf(&b, "        auto _result = %s(%s);\n", sig.FuncName, strings.Join(argNames, ", "))

	enc, err := cppEncodeExpr("_result", sig.Return, 0)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "        std::string _encoded = %s;\n", enc)
	b.WriteString("        std::cout.flush();\n")
	fmt.Fprintf(&b, "        std::cout << \"\\n\" << %q << \"\\n\";\n", sentinel)
	b.WriteString("        std::cout << \"{\\\"result\\\": \" << _encoded << \"}\" << std::endl;\n")
	b.WriteString("    } catch (const std::exception& e) {\n")
	b.WriteString("        std::cerr << \"harness error: \" << e.what() << std::endl;\n")
	b.WriteString("        return 1;\n")
	b.WriteString("    }\n")
	b.WriteString("    return 0;\n")
	b.WriteString("}\n")

	return b.String(), nil
}
