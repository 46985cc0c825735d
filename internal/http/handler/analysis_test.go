package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"complyscan.app/engine/internal/engine"
	"complyscan.app/engine/internal/http/dto"
	"complyscan.app/engine/internal/http/handler"
	"complyscan.app/engine/internal/knowledge"
	"complyscan.app/engine/internal/model"
)

var _ = Describe("AnalysisHandler", func() {
	var (
		router *gin.Engine
		store  *knowledge.Store
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		store = knowledge.NewStore(knowledge.StoreConfig{})

		eng, err := engine.New(nil, store, engine.Config{MergeMode: engine.MergeModeUnion})
		Expect(err).NotTo(HaveOccurred())

		router = gin.New()
		h := handler.NewAnalysisHandler(eng, store)
		router.POST("/analyses", h.Analyze)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/analyses", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("returns a full report for a sparse document", func() {
		w := post(`{"text": "We sell software."}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp dto.AnalyzeResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())

		Expect(resp.AnalysisID).NotTo(BeEmpty())
		Expect(resp.WeakPoints).To(HaveLen(len(model.Categories())))
		Expect(resp.Score).To(Equal(10))
		Expect(resp.Stats.Characters).To(Equal(len("We sell software.")))
		Expect(resp.Stats.Words).To(Equal(3))
		Expect(resp.Knowledge.IsLiveData).To(BeFalse())
	})

	It("returns a perfect score for a fully covered document", func() {
		doc := "consent encryption review right to access data breach third party"
		body, err := json.Marshal(dto.AnalyzeRequest{Text: doc})
		Expect(err).NotTo(HaveOccurred())

		w := post(string(body))
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp dto.AnalyzeResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.WeakPoints).To(BeEmpty())
		Expect(resp.ActionPlan).To(BeEmpty())
		Expect(resp.Score).To(Equal(100))
	})

	It("issues a distinct id per analysis", func() {
		first := post(`{"text": "a"}`)
		second := post(`{"text": "a"}`)

		var r1, r2 dto.AnalyzeResponse
		Expect(json.Unmarshal(first.Body.Bytes(), &r1)).To(Succeed())
		Expect(json.Unmarshal(second.Body.Bytes(), &r2)).To(Succeed())
		Expect(r1.AnalysisID).NotTo(Equal(r2.AnalysisID))
	})

	It("rejects a missing text field", func() {
		w := post(`{}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("rejects malformed JSON", func() {
		w := post(`{"text": `)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
