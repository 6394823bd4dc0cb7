package payroll

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/storage"
)

func payslipKey(r Record) string {
	return fmt.Sprintf("payslips/%s/%s.pdf", r.ProfileID, r.ID)
}

// RenderPayslip draws the payslip PDF for a record.
func RenderPayslip(data PayslipData, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	line := func(format string, args ...any) {
		pdf.Cell(0, 8, fmt.Sprintf(format, args...))
		pdf.Ln(7)
	}
	line("Employee: %s", data.ProfileName)
	line("Email: %s", data.Email)
	if data.Designation != "" {
		line("Designation: %s", data.Designation)
	}
	line("Period: %s to %s", data.PeriodStart.Format(time.DateOnly), data.PeriodEnd.Format(time.DateOnly))
	line("Status: %s", data.Status)
	pdf.Ln(3)
	line("Hours: %.2f (overtime %.2f)", data.TotalHours, data.OvertimeHours)
	line("Rate: %.2f %s", data.HourlyRate, currency)
	line("Gross: %.2f %s", data.GrossPay, currency)
	line("Deductions: %.2f %s", data.Deductions, currency)
	pdf.SetFont("Helvetica", "B", 12)
	line("Net: %.2f %s", data.NetPay, currency)
	pdf.SetFont("Helvetica", "", 12)
	if data.PaymentDate != nil {
		line("Paid on %s to %s", data.PaymentDate.Format(time.DateOnly), data.BankName)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GeneratePayslip renders the record's payslip and stores it.
func (s *Service) GeneratePayslip(ctx context.Context, user auth.UserContext, id string) (string, error) {
	if _, err := s.Get(ctx, user, id); err != nil {
		return "", err
	}
	data, err := s.store.PayslipData(ctx, id)
	if err != nil {
		return "", err
	}
	body, err := RenderPayslip(data, s.currency)
	if err != nil {
		return "", fmt.Errorf("render payslip: %w", err)
	}
	key := payslipKey(data.Record)
	_, err = s.files.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: payslipContentType,
		Metadata:    map[string]string{"payroll-id": id},
	})
	if err != nil {
		return "", fmt.Errorf("store payslip: %w", err)
	}
	if err := s.store.SetPayslipKey(ctx, id, key); err != nil {
		return "", err
	}
	return key, nil
}

// OpenPayslip streams the stored payslip, rendering it first when missing.
func (s *Service) OpenPayslip(ctx context.Context, user auth.UserContext, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	r, err := s.Get(ctx, user, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	key := r.PayslipKey
	if key == "" {
		if key, err = s.GeneratePayslip(ctx, user, id); err != nil {
			return nil, storage.ObjectInfo{}, err
		}
	}
	return s.files.Get(ctx, key)
}

// PayslipLink presigns a download link; "" means the backend streams only.
func (s *Service) PayslipLink(ctx context.Context, user auth.UserContext, id string, ttl time.Duration) (string, error) {
	r, err := s.Get(ctx, user, id)
	if err != nil {
		return "", err
	}
	key := r.PayslipKey
	if key == "" {
		if key, err = s.GeneratePayslip(ctx, user, id); err != nil {
			return "", err
		}
	}
	return s.files.PresignGet(ctx, key, ttl)
}
