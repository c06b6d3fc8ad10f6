//go:build integration

package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"vira-api/internal/models"
	"vira-api/internal/testutil"
)

func createVendor(t *testing.T, token, name string) models.Vendor {
	t.Helper()
	w := doJSON(t, "POST", "/vendors", token, map[string]interface{}{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create vendor: %d %s", w.Code, w.Body.String())
	}
	var v models.Vendor
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode vendor: %v", err)
	}
	return v
}

func createProject(t *testing.T, token, name, vendorID string) models.Project {
	t.Helper()
	w := doJSON(t, "POST", "/projects", token, map[string]interface{}{
		"name":     name,
		"vendorId": vendorID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("Failed to create project: %d %s", w.Code, w.Body.String())
	}
	var p models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("Failed to decode project: %v", err)
	}
	return p
}

func submitRating(t *testing.T, token, projectID, vendorID string, stars int) (*models.Vendor, int) {
	t.Helper()
	w := doJSON(t, "POST", fmt.Sprintf("/projects/%s/rating", projectID), token, map[string]interface{}{
		"vendorId": vendorID,
		"rating":   stars,
	})
	if w.Code != http.StatusOK {
		return nil, w.Code
	}
	var v models.Vendor
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to decode vendor: %v", err)
	}
	return &v, w.Code
}

func TestRatingAggregation(t *testing.T) {
	testutil.RequireIntegration(t)
	token := testToken(t, "admin")

	vendor := createVendor(t, token, "Rated Vendor")
	p1 := createProject(t, token, "First project", vendor.ID)
	p2 := createProject(t, token, "Second project", vendor.ID)
	p3 := createProject(t, token, "Third project", vendor.ID)

	// First rating: 4 -> 4.0 over 1 review
	v, code := submitRating(t, token, p1.ID, vendor.ID, 4)
	if code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", code)
	}
	if v.Rating != 4 || v.ReviewCount != 1 {
		t.Fatalf("Expected 4/1, got %v/%d", v.Rating, v.ReviewCount)
	}

	// Second rating: 5 -> 4.5 over 2 reviews
	v, _ = submitRating(t, token, p2.ID, vendor.ID, 5)
	if v.Rating != 4.5 || v.ReviewCount != 2 {
		t.Fatalf("Expected 4.5/2, got %v/%d", v.Rating, v.ReviewCount)
	}

	// Third rating: 3 -> 4.00 over 3 reviews
	v, _ = submitRating(t, token, p3.ID, vendor.ID, 3)
	if v.Rating != 4.00 || v.ReviewCount != 3 {
		t.Fatalf("Expected 4.00/3, got %v/%d", v.Rating, v.ReviewCount)
	}

	// Re-rating the same project must not inflate the count
	v, _ = submitRating(t, token, p3.ID, vendor.ID, 3)
	if v.ReviewCount != 3 {
		t.Fatalf("Expected reviewCount to stay 3, got %d", v.ReviewCount)
	}
}

func TestRatingValidation(t *testing.T) {
	testutil.RequireIntegration(t)
	token := testToken(t, "member")

	vendor := createVendorAsAdmin(t, "Validation Vendor")
	project := createProjectAsAdmin(t, "Validated project", vendor.ID)

	// Out-of-range stars
	if _, code := submitRating(t, token, project.ID, vendor.ID, 6); code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for rating 6, got %d", code)
	}
	if _, code := submitRating(t, token, project.ID, vendor.ID, 0); code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for rating 0, got %d", code)
	}

	// Unknown project / vendor
	if _, code := submitRating(t, token, "missing-project", vendor.ID, 3); code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown project, got %d", code)
	}
	if _, code := submitRating(t, token, project.ID, "missing-vendor", 3); code != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown vendor, got %d", code)
	}
}

func createVendorAsAdmin(t *testing.T, name string) models.Vendor {
	t.Helper()
	return createVendor(t, testToken(t, "admin"), name)
}

func createProjectAsAdmin(t *testing.T, name, vendorID string) models.Project {
	t.Helper()
	return createProject(t, testToken(t, "admin"), name, vendorID)
}
