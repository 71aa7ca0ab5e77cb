package insights

import (
	"encoding/json"
	"fmt"
	"strings"
)

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}

func delayPrompt(report string) string {
	return "Analyze the following driver delay report and suggest 3 key operational improvements. Report: " + report
}

func costPrompt(trip any) string {
	return fmt.Sprintf("Summarize the cost efficiency of this trip based on the data: %s. Keep it under 50 words. Focus on outliers.", mustJSON(trip))
}

func driverPrompt(job JobDetails, candidates any) string {
	return fmt.Sprintf(`Act as a logistics dispatcher.
Job Details: %s
Available Drivers: %s

Task: Recommend the best driver for this job.
Return ONLY a JSON object (no markdown) with this format:
{ "recommendedDriverId": number, "reason": "string reasoning" }`, mustJSON(job), mustJSON(candidates))
}

func receiptPrompt(kind ReceiptKind) string {
	if kind == ReceiptExpense {
		return `Read this expense receipt from a Philippine trucking trip.
Return ONLY a JSON object with this format:
{ "category": "Labor" | "Maintenance" | "Other", "description": string, "amount": number, "confidence": number between 0 and 1 }`
	}
	return `Read this fuel station receipt from a Philippine trucking trip.
Return ONLY a JSON object with this format:
{ "station": string, "liters": number, "price": number (per liter, PHP), "total": number (PHP), "confidence": number between 0 and 1 }`
}

func chatPrompt(message, dashboard string) string {
	return fmt.Sprintf(`System: You are an expert fleet management support agent for RVL Movers.
Context: %s
User: %s

Keep answers concise, helpful, and professional.`, dashboard, message)
}

func maintenancePrompt(vehicleName string, telemetry any) string {
	return fmt.Sprintf(`Act as a senior mechanic. Analyze the following telematics data (Speed, Consumption, Time) for %s.
Data: %s.
Identify any irregular patterns that might indicate engine, brake, or transmission issues.
Keep it brief (max 2 sentences).`, vehicleName, mustJSON(telemetry))
}

func performancePrompt(metrics any) string {
	return fmt.Sprintf(`Act as a Fleet Manager Executive. Write a concise, professional summary of this week's fleet performance.
Metrics: %s.
Highlight cost efficiency, driver performance, and 1 recommendation for next week.`, mustJSON(metrics))
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
