package response

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestEnvelope(t *testing.T) {
	ok, _ := json.Marshal(Success(http.StatusOK, map[string]int{"total": 2}))
	if !strings.Contains(string(ok), `"status":"success"`) || strings.Contains(string(ok), `"error"`) {
		t.Errorf("success body = %s", ok)
	}

	failed, _ := json.Marshal(Error(http.StatusNotFound, "not found"))
	if string(failed) != `{"status":"error","status_code":404,"error":"not found"}` {
		t.Errorf("error body = %s", failed)
	}

	withData := ErrorWithData(http.StatusConflict, "evidence required", []string{"request_evidence"})
	if withData.Status != "error" || withData.Data == nil || withData.StatusCode != http.StatusConflict {
		t.Errorf("ErrorWithData = %+v", withData)
	}
}
