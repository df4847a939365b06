package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestIntegration_OrderTotalComputedByServer(t *testing.T) {
	waitReady(t)
	code, rc := postOrder(t, `{"items":[{"product":"p1","price":10.005,"quantity":2}],"shipping":5}`)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if rc.ID == "" || rc.Total != 25.01 {
		t.Fatalf("unexpected receipt: %+v", rc)
	}
}

func TestIntegration_OrderFromListedProducts(t *testing.T) {
	waitReady(t)
	ps := getProducts(t, "?limit=2")
	if len(ps) < 2 {
		t.Fatalf("expected 2 products, got %d", len(ps))
	}
	body := fmt.Sprintf(`{"items":[{"product":%q,"price":%v,"quantity":1},{"product":%q,"price":%v,"quantity":2}],"shipping":0}`,
		ps[0].ID, ps[0].Price, ps[1].ID, ps[1].Price)
	code, rc := postOrder(t, body)
	if code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	want := ps[0].Price + 2*ps[1].Price
	if diff := rc.Total - want; diff > 0.005 || diff < -0.005 {
		t.Fatalf("expected total %.2f, got %.2f", want, rc.Total)
	}
}

func TestIntegration_NegativeShippingIgnored(t *testing.T) {
	waitReady(t)
	code, rc := postOrder(t, `{"items":[{"product":"a","price":4,"quantity":1}],"shipping":-10}`)
	if code != http.StatusCreated || rc.Total != 4 {
		t.Fatalf("unexpected result: %d %+v", code, rc)
	}
}

func TestIntegration_ClientTotalIgnored(t *testing.T) {
	waitReady(t)
	code, rc := postOrder(t, `{"items":[{"product":"a","price":2.5,"quantity":2,"title":"Tee"}],"total":0.01}`)
	if code != http.StatusCreated || rc.Total != 5 {
		t.Fatalf("unexpected result: %d %+v", code, rc)
	}
}

func TestIntegration_IdenticalOrdersGetDistinctIDs(t *testing.T) {
	waitReady(t)
	body := `{"items":[{"product":"dup","price":1,"quantity":1}]}`
	_, a := postOrder(t, body)
	_, b := postOrder(t, body)
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
}

func TestIntegration_OrderRejections(t *testing.T) {
	waitReady(t)
	cases := map[string]struct {
		body string
		want int
	}{
		"malformed json":  {`{"items":`, http.StatusBadRequest},
		"zero quantity":   {`{"items":[{"product":"a","price":1,"quantity":0}]}`, http.StatusUnprocessableEntity},
		"negative price":  {`{"items":[{"product":"a","price":-1,"quantity":1}]}`, http.StatusUnprocessableEntity},
		"missing product": {`{"items":[{"price":1,"quantity":1}]}`, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		if code, _ := postOrder(t, tc.body); code != tc.want {
			t.Fatalf("%s: expected %d, got %d", name, tc.want, code)
		}
	}
}
