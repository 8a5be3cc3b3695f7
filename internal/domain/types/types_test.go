package types_test

import (
	"encoding/json"
	"testing"

	"github.com/okian/compensa/internal/domain/model"
	types "github.com/okian/compensa/internal/domain/types"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func TestBatchItem(t *testing.T) {
	Convey("Given batch items", t, func() {
		ok := types.BatchItem{Index: 0, ID: "E1", Result: &model.Result{AdjustedBase: decimal.NewFromInt(10)}}
		failed := types.BatchItem{Index: 1, Error: &types.ItemError{Code: types.CodeMissingField, Field: "aum", Message: "missing required field: aum"}}

		Convey("Then OK reflects the error", func() {
			So(ok.OK(), ShouldBeTrue)
			So(failed.OK(), ShouldBeFalse)
		})

		Convey("When a batch result is marshalled", func() {
			raw, err := json.Marshal(types.BatchResult{BatchID: "b", Items: []types.BatchItem{ok, failed}, Succeeded: 1, Failed: 1})
			So(err, ShouldBeNil)

			var out map[string]any
			So(json.Unmarshal(raw, &out), ShouldBeNil)

			Convey("Then each item carries either a result or an error", func() {
				items := out["results"].([]any)
				So(items, ShouldHaveLength, 2)
				first := items[0].(map[string]any)
				second := items[1].(map[string]any)
				So(first, ShouldContainKey, "result")
				So(first, ShouldNotContainKey, "error")
				So(second, ShouldContainKey, "error")
				So(second, ShouldNotContainKey, "result")
				So(second["error"].(map[string]any)["field"], ShouldEqual, "aum")
			})
		})
	})
}

func TestSummaryResultJSON(t *testing.T) {
	Convey("Given a summary result", t, func() {
		raw, err := json.Marshal(types.SummaryResult{BatchResult: types.BatchResult{BatchID: "b-1"}})
		So(err, ShouldBeNil)

		var out map[string]any
		So(json.Unmarshal(raw, &out), ShouldBeNil)

		Convey("Then batch fields are inlined next to the summary", func() {
			So(out["batch_id"], ShouldEqual, "b-1")
			So(out, ShouldContainKey, "summary")
		})
	})
}
