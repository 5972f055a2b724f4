package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"munjiz/internal/logging"
	"munjiz/internal/models"
)

// Fallback texts shown when no analysis is available.
const (
	EmptyResponseText = "لم يتمكن المساعد الذكي من تحليل البيانات حالياً."
	ErrorText         = "حدث خطأ أثناء الاتصال بالمساعد الذكي. يرجى التأكد من إعداد مفتاح API بشكل صحيح."
)

const systemInstruction = "You are a helpful, professional productivity assistant tailored for an Arabic corporate environment. Always respond in Arabic."

var ErrNoAPIKey = errors.New("assistant: no API key configured")

type generateFunc func(ctx context.Context, prompt string) (string, error)

// Assistant produces a short Arabic productivity review of the task list.
type Assistant struct {
	generate generateFunc
	log      *logrus.Entry
}

// New builds a Gemini-backed assistant. Without an API key every analysis
// returns ErrorText.
func New(ctx context.Context, apiKey, model string, logger *logging.Logger) (*Assistant, error) {
	a := &Assistant{log: logger.Component("assistant")}
	if apiKey == "" {
		a.generate = func(context.Context, string) (string, error) { return "", ErrNoAPIKey }
		return a, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	a.generate = func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ThinkingConfig:    &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
		})
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return a, nil
}

type taskSummary struct {
	Title    string          `json:"title"`
	Due      string          `json:"due"`
	Priority models.Priority `json:"priority"`
	Status   models.Status   `json:"status"`
}

// Prompt renders the analysis request for tasks.
func Prompt(tasks []models.Task) (string, error) {
	summary := make([]taskSummary, 0, len(tasks))
	for _, t := range tasks {
		summary = append(summary, taskSummary{Title: t.Title, Due: t.DueDate, Priority: t.Priority, Status: t.Status})
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`بصفتك مساعدًا ذكيًا للإنتاجية، قم بتحليل قائمة المهام التالية لموظف محترف.
المهام: %s

المطلوب:
1. قدم ملخصاً موجزاً لحالة العمل اليوم.
2. اقترح المهام التي يجب التركيز عليها أولاً بناءً على الأولويات والمواعيد النهائية.
3. قدم نصيحة واحدة لزيادة الإنتاجية.

الرجاء الرد باللغة العربية بأسلوب احترافي ومشجع. استخدم تنسيق Markdown للعناوين والنقاط.`, data), nil
}

// Analyze never fails: errors are logged and replaced by a fallback text.
func (a *Assistant) Analyze(ctx context.Context, tasks []models.Task) string {
	prompt, err := Prompt(tasks)
	if err != nil {
		a.log.Errorf("Error building analysis prompt: %v", err)
		return ErrorText
	}
	text, err := a.generate(ctx, prompt)
	if err != nil {
		a.log.Errorf("Error analyzing tasks: %v", err)
		return ErrorText
	}
	if strings.TrimSpace(text) == "" {
		return EmptyResponseText
	}
	return text
}
