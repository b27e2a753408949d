// Package validate contains the default [domain.Validator] implementation.
// Validation is stateless: every check runs against the proposed operation
// alone, and all violations are reported at once instead of failing on the
// first.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/data"
)

// reservedName matches field names and ids reserved for internal use.
var reservedName = regexp.MustCompile(`^__.*__$`)

// Validate implements [domain.Validator].
type Validate struct {
	limits domain.Limits
	docFac domain.DocumentFactory
}

// NewValidate returns a new implementation of [domain.Validator] with
// backend-compatible default limits.
func NewValidate(options ...domain.ValidatorOption) domain.Validator {
	opts := domain.ValidatorOptions{
		Limits:          domain.DefaultLimits(),
		DocumentFactory: data.NewDocument,
	}
	for _, option := range options {
		option(&opts)
	}
	return &Validate{limits: opts.Limits, docFac: opts.DocumentFactory}
}

// Validate implements [domain.Validator].
func (v *Validate) Validate(op domain.Operation) []domain.Violation {
	var res []domain.Violation

	switch op.Kind {
	case domain.KindCreate, domain.KindUpdate, domain.KindSet, domain.KindDelete:
	default:
		res = append(res, domain.Violation{
			Path:    "",
			Message: fmt.Sprintf("unknown operation kind %q", op.Kind),
		})
	}

	res = append(res, v.checkCollection(op.Collection)...)
	res = append(res, v.checkID(op)...)

	switch op.Kind {
	case domain.KindCreate, domain.KindUpdate, domain.KindSet:
		if op.Data == nil {
			res = append(res, domain.Violation{
				Path:    "",
				Message: "operation requires data",
			})
			break
		}
		doc, err := v.document(op.Data)
		if err != nil {
			res = append(res, domain.Violation{
				Path:    "",
				Message: fmt.Sprintf("data is not a document: %v", err),
			})
			break
		}
		size := 0
		res = append(res, v.checkDocument(op, doc, "", &size)...)
		if size > v.limits.MaxDocumentSizeBytes {
			res = append(res, domain.Violation{
				Path: "",
				Message: fmt.Sprintf("document size %d exceeds the %d byte limit",
					size, v.limits.MaxDocumentSizeBytes),
			})
		}
	}

	return res
}

// ValidateOrFail implements [domain.Validator]. All violations across all
// operations are aggregated into a single [domain.ValidationError].
func (v *Validate) ValidateOrFail(ops ...domain.Operation) error {
	var violations []domain.Violation

	if len(ops) > v.limits.MaxOperations {
		violations = append(violations, domain.Violation{
			Path: "",
			Message: fmt.Sprintf("%d operations exceed the %d operation limit: %v",
				len(ops), v.limits.MaxOperations, domain.ErrOperationLimit),
		})
	}

	for n, op := range ops {
		for _, violation := range v.Validate(op) {
			violation.Path = prefixPath(fmt.Sprintf("ops[%d]", n), violation.Path)
			violations = append(violations, violation)
		}
	}

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

// document normalizes the operation data into a document. Raw maps and
// tagged structs go through the document factory.
func (v *Validate) document(payload any) (domain.Document, error) {
	if doc, ok := payload.(domain.Document); ok {
		return doc, nil
	}
	return v.docFac(payload)
}

func (v *Validate) checkCollection(collection string) []domain.Violation {
	var res []domain.Violation
	if collection == "" {
		res = append(res, domain.Violation{Message: "collection is required"})
	}
	if strings.Contains(collection, "/") {
		res = append(res, domain.Violation{
			Message: fmt.Sprintf("collection %q must not contain '/'", collection),
		})
	}
	return res
}

func (v *Validate) checkID(op domain.Operation) []domain.Violation {
	var res []domain.Violation

	// creates and sets may leave the id empty for auto-assignment
	if op.ID == "" {
		if op.Kind == domain.KindUpdate || op.Kind == domain.KindDelete {
			res = append(res, domain.Violation{
				Message: fmt.Sprintf("%s requires a document id", op.Kind),
			})
		}
		return res
	}

	if len(op.ID) > v.limits.MaxIDLength {
		res = append(res, domain.Violation{
			Message: fmt.Sprintf("document id length %d exceeds the %d byte limit",
				len(op.ID), v.limits.MaxIDLength),
		})
	}
	if op.ID == "." || op.ID == ".." {
		res = append(res, domain.Violation{
			Message: fmt.Sprintf("document id %q is not allowed", op.ID),
		})
	}
	if strings.Contains(op.ID, "/") {
		res = append(res, domain.Violation{
			Message: fmt.Sprintf("document id %q must not contain '/'", op.ID),
		})
	}
	if reservedName.MatchString(op.ID) {
		res = append(res, domain.Violation{
			Message: fmt.Sprintf("document id %q uses a reserved name", op.ID),
		})
	}
	return res
}

func (v *Validate) checkDocument(op domain.Operation, doc domain.Document, path string, size *int) []domain.Violation {
	var res []domain.Violation
	for key, value := range doc.Iter() {
		fieldPath := prefixPath(path, key)
		*size += len(key) + 1

		if key == "" {
			res = append(res, domain.Violation{
				Path:    fieldPath,
				Message: "field name must not be empty",
			})
		}
		if len(key) > v.limits.MaxFieldNameLength {
			res = append(res, domain.Violation{
				Path: fieldPath,
				Message: fmt.Sprintf("field name length %d exceeds the %d byte limit",
					len(key), v.limits.MaxFieldNameLength),
			})
		}
		for _, segment := range strings.Split(key, ".") {
			if reservedName.MatchString(segment) {
				res = append(res, domain.Violation{
					Path:    fieldPath,
					Message: fmt.Sprintf("field name %q uses a reserved name", segment),
				})
				break
			}
		}

		res = append(res, v.checkValue(op, value, fieldPath, size)...)
	}
	return res
}

func (v *Validate) checkValue(op domain.Operation, value any, path string, size *int) []domain.Violation {
	var res []domain.Violation

	switch t := value.(type) {
	case string:
		*size += len(t) + 1
		if len(t) > v.limits.MaxStringLength {
			res = append(res, domain.Violation{
				Path: path,
				Message: fmt.Sprintf("string length %d exceeds the %d byte limit",
					len(t), v.limits.MaxStringLength),
			})
		}

	case []any:
		if len(t) > v.limits.MaxArrayElements {
			res = append(res, domain.Violation{
				Path: path,
				Message: fmt.Sprintf("array length %d exceeds the %d element limit",
					len(t), v.limits.MaxArrayElements),
			})
		}
		for n, el := range t {
			res = append(res, v.checkValue(op, el, fmt.Sprintf("%s[%d]", path, n), size)...)
		}

	case domain.Document:
		res = append(res, v.checkDocument(op, t, path, size)...)

	case domain.DeleteField:
		*size += 8
		// field deletion needs existing state to delete from
		if op.Kind == domain.KindCreate ||
			(op.Kind == domain.KindSet && !op.Options.Merge) {
			res = append(res, domain.Violation{
				Path:    path,
				Message: fmt.Sprintf("field deletion is not allowed in a %s operation", op.Kind),
			})
		}

	case domain.ArrayUnion:
		res = append(res, v.checkValue(op, t.Elements, path, size)...)

	case domain.ArrayRemove:
		res = append(res, v.checkValue(op, t.Elements, path, size)...)

	case domain.Transform:
		*size += 8

	case time.Time:
		*size += 8

	case nil:
		*size++

	case bool:
		*size++

	default:
		*size += 8
	}

	return res
}

func prefixPath(prefix, path string) string {
	if prefix == "" {
		return path
	}
	if path == "" {
		return prefix
	}
	return prefix + "." + path
}
