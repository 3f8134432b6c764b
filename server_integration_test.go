package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"finbooks/models"
	"finbooks/pkg/ledger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("integration-test-secret")
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

// uniqueName avoids collisions with leftovers from earlier runs against the
// same database.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

// registerAndLogin creates the user if needed and returns an access token.
func registerAndLogin(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/register", jsonBody(t, map[string]string{"username": username, "password": password}), "")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodPost, "/login", jsonBody(t, map[string]string{"username": username, "password": password}), "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var loginResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &loginResp)
	token, _ := loginResp["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %+v", loginResp)
	}
	return token
}

type listResponse struct {
	Transactions []map[string]any `json:"transactions"`
	IncomeTotal  *string          `json:"income_total"`
	ExpenseTotal *string          `json:"expense_total"`
}

func listTransactions(t *testing.T, r *gin.Engine, token, filter string) listResponse {
	t.Helper()
	path := "/transactions"
	if filter != "" {
		path += "?filter=" + filter
	}
	resp := performRequest(r, http.MethodGet, path, nil, token)
	if resp.Code != 200 {
		t.Fatalf("list failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out listResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return out
}

func TestTransactionFlow(t *testing.T) {
	r := setupTestServer(t)
	token := registerAndLogin(t, r, uniqueName("txuser1"), "pass123")

	// create
	resp := performRequest(r, http.MethodPost, "/transactions", jsonBody(t, map[string]any{
		"title": "forty-two", "amount": 42, "category": 0,
	}), token)
	if resp.Code != 200 {
		t.Fatalf("create failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var createResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &createResp)
	id := int(createResp["id"].(float64))
	if id == 0 {
		t.Fatalf("create returned no id: %+v", createResp)
	}

	// list contains the record and the expense sum, income sum stays null
	out := listTransactions(t, r, token, "")
	found := false
	for _, tr := range out.Transactions {
		if tr["title"] == "forty-two" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created transaction missing from list: %+v", out.Transactions)
	}
	if out.ExpenseTotal == nil {
		t.Fatalf("expense_total should be set after an expense was created")
	}

	// fetch by id
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil, token)
	if resp.Code != 200 {
		t.Fatalf("get failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var got map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	createdAt := got["created"]

	// update must not touch created
	resp = performRequest(r, http.MethodPut, fmt.Sprintf("/transactions/%d", id), jsonBody(t, map[string]any{
		"title": "forty-three", "amount": 43, "category": 1,
	}), token)
	if resp.Code != 200 {
		t.Fatalf("update failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var updated map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &updated)
	if updated["title"] != "forty-three" {
		t.Fatalf("update did not apply: %+v", updated)
	}
	if updated["created"] != createdAt {
		t.Fatalf("created changed on update: %v -> %v", createdAt, updated["created"])
	}

	// soft delete, twice: second call is a no-op, not an error
	for i := 0; i < 2; i++ {
		resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, token)
		if resp.Code != 200 {
			t.Fatalf("delete attempt %d failed status=%d body=%s", i+1, resp.Code, resp.Body.String())
		}
	}

	// gone from the list, still addressable by id with active=false
	out = listTransactions(t, r, token, "")
	for _, tr := range out.Transactions {
		if tr["title"] == "forty-three" {
			t.Fatalf("soft-deleted transaction still listed")
		}
	}
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil, token)
	if resp.Code != 200 {
		t.Fatalf("get after delete failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	if got["active"] != false {
		t.Fatalf("deleted transaction should report active=false: %+v", got)
	}
}

func TestTransactionValidation(t *testing.T) {
	r := setupTestServer(t)
	token := registerAndLogin(t, r, uniqueName("txuser2"), "pass123")

	// amount missing
	resp := performRequest(r, http.MethodPost, "/transactions", jsonBody(t, map[string]any{
		"title": "no amount", "category": 0,
	}), token)
	if resp.Code != 400 {
		t.Fatalf("expected 400, got %d body=%s", resp.Code, resp.Body.String())
	}
	var errResp struct {
		Fields map[string]string `json:"fields"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &errResp)
	if _, ok := errResp.Fields["amount"]; !ok {
		t.Fatalf("expected a field-level error for amount, got %s", resp.Body.String())
	}

	// category outside the enum
	resp = performRequest(r, http.MethodPost, "/transactions", jsonBody(t, map[string]any{
		"title": "bad category", "amount": 10, "category": 9,
	}), token)
	if resp.Code != 400 {
		t.Fatalf("expected 400 for bad category, got %d body=%s", resp.Code, resp.Body.String())
	}

	// too many fractional digits for a (10,2) column
	resp = performRequest(r, http.MethodPost, "/transactions", jsonBody(t, map[string]any{
		"title": "precise", "amount": "1.999", "category": 0,
	}), token)
	if resp.Code != 400 {
		t.Fatalf("expected 400 for 3 decimal places, got %d body=%s", resp.Code, resp.Body.String())
	}

	// title longer than the 255-char column is rejected before it hits the
	// database, with the error attached to the field
	resp = performRequest(r, http.MethodPost, "/transactions", jsonBody(t, map[string]any{
		"title": strings.Repeat("x", 300), "amount": 10, "category": 0,
	}), token)
	if resp.Code != 400 {
		t.Fatalf("expected 400 for over-length title, got %d body=%s", resp.Code, resp.Body.String())
	}
	errResp.Fields = nil
	_ = json.Unmarshal(resp.Body.Bytes(), &errResp)
	if _, ok := errResp.Fields["title"]; !ok {
		t.Fatalf("expected a field-level error for title, got %s", resp.Body.String())
	}

	// category 0 (expense) is a legal value, not a missing field
	resp = performRequest(r, http.MethodPost, "/transactions", jsonBody(t, map[string]any{
		"title": "zero category", "amount": 5, "category": 0,
	}), token)
	if resp.Code != 200 {
		t.Fatalf("category 0 rejected: status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestWindowFilterFallback(t *testing.T) {
	r := setupTestServer(t)
	name := uniqueName("txuser3")
	token := registerAndLogin(t, r, name, "pass123")

	var user models.User
	if err := db.Where("username = ?", name).First(&user).Error; err != nil {
		t.Fatalf("lookup seeded user: %v", err)
	}

	// seed straight through the db so created can be backdated; anchored on
	// the first of the month to dodge AddDate day overflow
	now := time.Now()
	monthAnchor := time.Date(now.Year(), now.Month(), 1, 12, 0, 0, 0, time.UTC)
	seeds := []time.Time{
		now,
		monthAnchor.AddDate(0, -1, 0),
		monthAnchor.AddDate(0, -6, 0),
		monthAnchor.AddDate(-1, 0, 0),
	}
	for i, ts := range seeds {
		tr := models.Transaction{
			UserID:   user.ID,
			Amount:   decimal.NewFromInt(int64(i + 1)),
			Category: models.Expense,
			Created:  ts,
			Modified: ts,
			Active:   true,
		}
		if err := db.Create(&tr).Error; err != nil {
			t.Fatalf("seed transaction %d: %v", i, err)
		}
	}

	// each window returns exactly the seeds the pure predicate admits; the
	// sets are genuinely distinct, so the SQL range is actually exercised
	for _, w := range []ledger.Window{ledger.ThisMonth, ledger.LastMonth, ledger.ThisYear, ledger.AllTime} {
		want := 0
		for _, ts := range seeds {
			if w.Contains(ts, now) {
				want++
			}
		}
		out := listTransactions(t, r, token, string(w))
		if len(out.Transactions) != want {
			t.Fatalf("filter %s: got %d records, want %d", w, len(out.Transactions), want)
		}
	}
	if this := listTransactions(t, r, token, "this_month"); len(this.Transactions) != 1 {
		t.Fatalf("this_month should only hold the current-clock seed, got %d", len(this.Transactions))
	}
	all := listTransactions(t, r, token, "all_time")
	if len(all.Transactions) != len(seeds) {
		t.Fatalf("all_time returned %d records, want %d", len(all.Transactions), len(seeds))
	}

	// an unknown filter value is not an error and matches all_time
	bogus := listTransactions(t, r, token, "bogus")
	if len(bogus.Transactions) != len(all.Transactions) {
		t.Fatalf("bogus filter returned %d records, all_time has %d", len(bogus.Transactions), len(all.Transactions))
	}
}

func TestUserScoping(t *testing.T) {
	r := setupTestServer(t)
	tokenA := registerAndLogin(t, r, uniqueName("scopeuserA"), "pass123")
	tokenB := registerAndLogin(t, r, uniqueName("scopeuserB"), "pass123")

	resp := performRequest(r, http.MethodPost, "/transactions", jsonBody(t, map[string]any{
		"title": "private to A", "amount": 11, "category": 0,
	}), tokenA)
	if resp.Code != 200 {
		t.Fatalf("create failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var createResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &createResp)
	id := int(createResp["id"].(float64))

	// B's list never contains A's record
	out := listTransactions(t, r, tokenB, "")
	for _, tr := range out.Transactions {
		if tr["title"] == "private to A" {
			t.Fatalf("user B can see user A's transaction")
		}
	}

	// B cannot read, mutate or delete A's record by id
	if resp := performRequest(r, http.MethodGet, fmt.Sprintf("/transactions/%d", id), nil, tokenB); resp.Code != 404 {
		t.Fatalf("expected 404 for cross-user get, got %d", resp.Code)
	}
	if resp := performRequest(r, http.MethodPut, fmt.Sprintf("/transactions/%d", id), jsonBody(t, map[string]any{
		"title": "stolen", "amount": 1, "category": 0,
	}), tokenB); resp.Code != 404 {
		t.Fatalf("expected 404 for cross-user update, got %d", resp.Code)
	}
	if resp := performRequest(r, http.MethodDelete, fmt.Sprintf("/transactions/%d", id), nil, tokenB); resp.Code != 404 {
		t.Fatalf("expected 404 for cross-user delete, got %d", resp.Code)
	}
}

func TestDebtLoanFlow(t *testing.T) {
	r := setupTestServer(t)
	token := registerAndLogin(t, r, uniqueName("dluser1"), "pass123")

	// with_who is required
	resp := performRequest(r, http.MethodPost, "/debtloans", jsonBody(t, map[string]any{
		"title": "nameless", "amount": 10, "category": 1,
	}), token)
	if resp.Code != 400 {
		t.Fatalf("expected 400 without with_who, got %d body=%s", resp.Code, resp.Body.String())
	}

	// with_who is capped at the 255-char column width
	resp = performRequest(r, http.MethodPost, "/debtloans", jsonBody(t, map[string]any{
		"with_who": strings.Repeat("y", 300), "amount": 10, "category": 1,
	}), token)
	if resp.Code != 400 {
		t.Fatalf("expected 400 for over-length with_who, got %d body=%s", resp.Code, resp.Body.String())
	}

	resp = performRequest(r, http.MethodPost, "/debtloans", jsonBody(t, map[string]any{
		"with_who": "ACME co.", "title": "first", "amount": 42, "category": 1,
	}), token)
	if resp.Code != 200 {
		t.Fatalf("create failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var createResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &createResp)
	id := int(createResp["id"].(float64))

	resp = performRequest(r, http.MethodGet, "/debtloans", nil, token)
	if resp.Code != 200 {
		t.Fatalf("list failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out struct {
		DebtLoans []map[string]any `json:"debt_loans"`
		DebtTotal *string          `json:"debt_total"`
		LoanTotal *string          `json:"loan_total"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	found := false
	for _, dl := range out.DebtLoans {
		if dl["with_who"] == "ACME co." {
			found = true
		}
	}
	if !found {
		t.Fatalf("created debt/loan missing from list: %+v", out.DebtLoans)
	}
	if out.LoanTotal == nil {
		t.Fatalf("loan_total should be set after a loan was created")
	}

	// soft delete then verify it leaves the list but stays readable
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("/debtloans/%d", id), nil, token)
	if resp.Code != 200 {
		t.Fatalf("delete failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, fmt.Sprintf("/debtloans/%d", id), nil, token)
	if resp.Code != 200 {
		t.Fatalf("get after delete failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var got map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	if got["active"] != false {
		t.Fatalf("deleted debt/loan should report active=false: %+v", got)
	}
}
