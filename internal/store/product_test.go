package store

import (
	"testing"
	"time"
)

func TestProductCatalogSeeded(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProductStore(db)

	count, err := ps.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count == 0 {
		t.Fatal("fresh store must have a seeded catalog")
	}

	products, err := ps.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	found := false
	for _, p := range products {
		if p.Label == "Riz" {
			found = true
			if p.Unit != "kg" {
				t.Errorf("Riz unit = %q, want kg", p.Unit)
			}
		}
	}
	if !found {
		t.Error("seeded catalog missing Riz")
	}
}

func TestProductCRUD(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProductStore(db)

	before, err := ps.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}

	p, err := ps.Create("Piment", "kg")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.Label != "Piment" || p.Unit != "kg" {
		t.Errorf("product = %+v", p)
	}
	if p.CategoryID != nil || p.AvgPrice != nil {
		t.Errorf("new product optional fields = (%v, %v), want nil", p.CategoryID, p.AvgPrice)
	}

	updated, err := ps.Update(p.ID, "Piment fort", "g")
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if updated.Label != "Piment fort" || updated.Unit != "g" {
		t.Errorf("updated = %+v", updated)
	}

	if err := ps.Delete(p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get deleted: %v", err)
	}
	if got != nil {
		t.Error("expected nil after delete")
	}

	after, err := ps.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if after != before {
		t.Errorf("count = %d, want %d", after, before)
	}
}

func TestProductCreateDefaultsUnit(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProductStore(db)

	p, err := ps.Create("Allumettes", "")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if p.Unit != "pcs" {
		t.Errorf("unit = %q, want pcs", p.Unit)
	}
}

func TestProductListSortedByLabel(t *testing.T) {
	db := setupTestDB(t)
	ps := NewProductStore(db)

	if _, err := ps.Create("ananas", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ps.Create("Abricot", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	products, err := ps.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) < 2 {
		t.Fatalf("len = %d", len(products))
	}
	// Case-insensitive order: Abricot before ananas, both before the seeds.
	if products[0].Label != "Abricot" || products[1].Label != "ananas" {
		t.Errorf("order = [%s, %s]", products[0].Label, products[1].Label)
	}
}

func TestProductDeleteLeavesItemsAlone(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	is := NewItemStore(db)
	ps := NewProductStore(db)

	p, err := ps.Create("Gingembre", "kg")
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	listID := createTestList(t, ls, "Epicerie", time.Now())
	item, err := is.Create(listID, "Gingembre", "kg")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := ps.Delete(p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	got, err := is.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got == nil || got.Label != "Gingembre" {
		t.Errorf("item = %+v, want untouched Gingembre", got)
	}
}
