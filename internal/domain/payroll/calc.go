package payroll

import "workforce/internal/domain/timecalc"

// Compute totals approved hours for a period and applies deductions. The
// effective rate is gross over total hours.
func Compute(lines []HoursLine, deductions float64) Computation {
	var c Computation
	for _, l := range lines {
		c.Entries++
		c.TotalHours += l.ActualHours
		c.OvertimeHours += l.OvertimeHours
		c.GrossPay += l.PayableAmount
	}
	c.TotalHours = timecalc.Round2(c.TotalHours)
	c.OvertimeHours = timecalc.Round2(c.OvertimeHours)
	c.GrossPay = timecalc.Round2(c.GrossPay)
	c.Deductions = timecalc.Round2(deductions)
	c.NetPay = timecalc.NetPay(c.GrossPay, c.Deductions)
	c.HourlyRate = timecalc.EffectiveRate(c.GrossPay, c.TotalHours)
	return c
}

func (c Computation) apply(r *Record) {
	r.TotalHours = c.TotalHours
	r.OvertimeHours = c.OvertimeHours
	r.HourlyRate = c.HourlyRate
	r.GrossPay = c.GrossPay
	r.Deductions = c.Deductions
	r.NetPay = c.NetPay
	r.NegativeNet = c.NetPay < 0
}

func (c Computation) withDeductions(deductions float64) Computation {
	c.Deductions = timecalc.Round2(deductions)
	c.NetPay = timecalc.NetPay(c.GrossPay, c.Deductions)
	return c
}
