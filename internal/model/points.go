package model

import (
	"github.com/shopspring/decimal"
)

// PointScale 积分以整数最小单位存储，1 积分 = 100 单位
const PointScale = 100

const pointExp = 2

// PointsToUnits 将积分数值转换为最小单位（四舍五入到两位小数）
func PointsToUnits(points float64) int64 {
	return decimal.NewFromFloat(points).Shift(pointExp).Round(0).IntPart()
}

// DecimalToUnits 将 decimal 积分转换为最小单位
func DecimalToUnits(points decimal.Decimal) int64 {
	return points.Shift(pointExp).Round(0).IntPart()
}

// UnitsToPoints 将最小单位转换回积分数值，用于 JSON 输出
func UnitsToPoints(units int64) float64 {
	f, _ := decimal.New(units, -pointExp).Float64()
	return f
}
