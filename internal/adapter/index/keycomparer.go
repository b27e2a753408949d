package index

import (
	"github.com/vinicius-lino-figueiredo/bst"

	"github.com/firelite-db/firelite/domain"
	"github.com/firelite-db/firelite/internal/adapter/data"
)

type bstComparer struct {
	comparer domain.Comparer
	fields   []domain.IndexField
}

// NewBSTComparer adapts a [domain.Comparer] to the tree's comparer contract.
// Composite keys are compared field by field in index order, honoring each
// field's direction; scalar keys are compared directly with the first field's
// direction.
func NewBSTComparer(comparer domain.Comparer, fields []domain.IndexField) bst.Comparer[any, string] {
	return &bstComparer{
		comparer: comparer,
		fields:   fields,
	}
}

// CompareKeys implements bst.Comparer.
func (bc *bstComparer) CompareKeys(a any, b any) (int, error) {
	ma, aOk := a.(data.M)
	mb, bOk := b.(data.M)
	if !aOk || !bOk {
		comp, err := bc.comparer.Compare(a, b)
		if err != nil {
			return 0, err
		}
		return bc.signed(comp, 0), nil
	}
	for n, f := range bc.fields {
		comp, err := bc.comparer.Compare(ma[f.Field], mb[f.Field])
		if err != nil {
			return 0, err
		}
		if comp != 0 {
			return bc.signed(comp, n), nil
		}
	}
	return 0, nil
}

// CompareValues implements bst.Comparer. Values are document ids.
func (bc *bstComparer) CompareValues(a string, b string) (bool, error) {
	return a == b, nil
}

func (bc *bstComparer) signed(comp, field int) int {
	if field < len(bc.fields) && bc.fields[field].Direction == domain.Descending {
		return -comp
	}
	return comp
}
