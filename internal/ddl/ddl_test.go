package ddl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"etl_manager/internal/models"
)

func TestGenerateCreateDDL(t *testing.T) {
	cols := []models.ColumnDescriptor{
		{Name: "empno", Type: "INTEGER", IsPrimaryKey: true},
		{Name: "ename", Type: "VARCHAR"},
	}

	want := "DROP TABLE IF EXISTS \"EMP\";\n" +
		"\n" +
		"CREATE TABLE \"EMP\" (\n" +
		"\t\"EMPNO\" INTEGER PRIMARY KEY\n" +
		"  , \"ENAME\" VARCHAR\n" +
		");"

	assert.Equal(t, want, GenerateCreateDDL("emp", cols))
}

func TestGenerateCreateDDLIsDeterministic(t *testing.T) {
	cols := []models.ColumnDescriptor{
		{Name: "A", Type: "TEXT"},
		{Name: "B", Type: "NUMERIC"},
		{Name: "C", Type: "TIMESTAMP"},
	}
	assert.Equal(t, GenerateCreateDDL("t", cols), GenerateCreateDDL("t", cols))
}

func TestCreateTableStatementCompositeKey(t *testing.T) {
	cols := []models.ColumnDescriptor{
		{Name: "order_id", Type: "INTEGER", IsPrimaryKey: true},
		{Name: "line_no", Type: "INTEGER", IsPrimaryKey: true},
		{Name: "sku", Type: "VARCHAR"},
	}

	want := "CREATE TABLE \"ORDER_LINES\" (\n" +
		"\t\"ORDER_ID\" INTEGER\n" +
		"  , \"LINE_NO\" INTEGER\n" +
		"  , \"SKU\" VARCHAR\n" +
		"  , PRIMARY KEY (\"ORDER_ID\", \"LINE_NO\")\n" +
		");"

	assert.Equal(t, want, CreateTableStatement("order_lines", cols))
}

func TestGenerateDropDDL(t *testing.T) {
	assert.Equal(t, `DROP TABLE IF EXISTS "DEPT";`, GenerateDropDDL(" dept "))
}

func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple", in: "emp", want: `"EMP"`},
		{name: "with space", in: "hire date", want: `"HIRE DATE"`},
		{name: "with double quote", in: `weird"name`, want: `"WEIRD""NAME"`},
		{name: "empty", in: "", want: `""`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, QuoteIdent(tt.in))
		})
	}
}

func TestCommentStatements(t *testing.T) {
	note := "Employee's number"
	empty := ""
	cols := []models.ColumnDescriptor{
		{Name: "EMPNO", Type: "INTEGER", Comment: &note},
		{Name: "ENAME", Type: "VARCHAR"},
		{Name: "JOB", Type: "VARCHAR", Comment: &empty},
	}

	assert.Equal(t, []string{
		`COMMENT ON COLUMN "EMP"."EMPNO" IS 'Employee''s number';`,
	}, CommentStatements("emp", cols))
}
