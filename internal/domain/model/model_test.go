package model_test

import (
	"encoding/json"
	"testing"

	model "github.com/okian/compensa/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/smartystreets/goconvey/convey"
)

func TestBracket_Contains(t *testing.T) {
	convey.Convey("Given a bounded and an open bracket", t, func() {
		mid := model.Bracket{
			Name: "mid",
			Min:  decimal.RequireFromString("100000000"),
			Max:  model.Amount(decimal.RequireFromString("500000000")),
		}
		high := model.Bracket{Name: "high", Min: decimal.RequireFromString("500000000")}

		convey.Convey("Then the lower bound is inclusive", func() {
			convey.So(mid.Contains(decimal.RequireFromString("100000000")), convey.ShouldBeTrue)
		})

		convey.Convey("And the upper bound is exclusive", func() {
			convey.So(mid.Contains(decimal.RequireFromString("500000000")), convey.ShouldBeFalse)
			convey.So(high.Contains(decimal.RequireFromString("500000000")), convey.ShouldBeTrue)
		})

		convey.Convey("And an open bracket has no ceiling", func() {
			convey.So(high.Contains(decimal.RequireFromString("1e15")), convey.ShouldBeTrue)
		})

		convey.Convey("And values below min are rejected", func() {
			convey.So(mid.Contains(decimal.RequireFromString("99999999.99")), convey.ShouldBeFalse)
		})
	})
}

func TestBand_Usable(t *testing.T) {
	convey.Convey("Given salary bands", t, func() {
		ok := model.Band{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(20)}
		flat := model.Band{Min: decimal.NewFromInt(10), Max: decimal.NewFromInt(10)}
		inverted := model.Band{Min: decimal.NewFromInt(30), Max: decimal.NewFromInt(20)}

		convey.So(ok.Usable(), convey.ShouldBeTrue)
		convey.So(flat.Usable(), convey.ShouldBeTrue)
		convey.So(inverted.Usable(), convey.ShouldBeFalse)
	})
}

func TestResultJSON(t *testing.T) {
	convey.Convey("Given a result with no band breach", t, func() {
		res := model.Result{
			OriginalBase: decimal.RequireFromString("120000"),
			AdjustedBase: decimal.RequireFromString("126000"),
			Flags:        model.Flags{MRTFlag: model.MRTFlagOK},
		}

		convey.Convey("When it is marshalled", func() {
			raw, err := json.Marshal(res)
			convey.So(err, convey.ShouldBeNil)

			var out map[string]any
			convey.So(json.Unmarshal(raw, &out), convey.ShouldBeNil)

			convey.Convey("Then decimals are strings and band_breach is null", func() {
				convey.So(out["adjusted_base"], convey.ShouldEqual, "126000")
				flags := out["flags"].(map[string]any)
				convey.So(flags["band_breach"], convey.ShouldBeNil)
				convey.So(flags["mrt_flag"], convey.ShouldEqual, "OK")
			})
		})
	})

	convey.Convey("Given band breach JSON values", t, func() {
		var b model.BandBreach
		convey.So(json.Unmarshal([]byte(`"Above Max"`), &b), convey.ShouldBeNil)
		convey.So(b, convey.ShouldEqual, model.BandBreachAboveMax)
		convey.So(json.Unmarshal([]byte(`null`), &b), convey.ShouldBeNil)
		convey.So(b, convey.ShouldEqual, model.BandBreachNone)
	})
}

func TestEmployeeJSON(t *testing.T) {
	convey.Convey("Given an employee payload with numbers and strings", t, func() {
		payload := `{"base_salary": 120000, "aum": "250000000.10", "team_size": 3,
			"performance_quintile": "Q2", "mrt_status": false, "role": "Fund Manager", "level": "Senior"}`

		var emp model.Employee
		err := json.Unmarshal([]byte(payload), &emp)

		convey.Convey("Then present fields decode exactly and absent ones stay invalid", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(emp.BaseSalary.Valid, convey.ShouldBeTrue)
			convey.So(emp.AUM.Decimal.String(), convey.ShouldEqual, "250000000.1")
			convey.So(*emp.TeamSize, convey.ShouldEqual, 3)
			convey.So(*emp.MRTStatus, convey.ShouldBeFalse)
			convey.So(emp.LastYearRevenue.Valid, convey.ShouldBeFalse)
			convey.So(emp.Department, convey.ShouldEqual, "")
		})
	})
}
