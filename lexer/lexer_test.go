package lexer

import (
	"lyra/token"
	"reflect"
	"testing"
)


func runTestSuccess(t *testing.T, scanner *Lexer, expected []token.Token){

	t.Run("ValidTokenScan", func(t *testing.T) {
		got, err := scanner.Scan()
		if err != nil {
			t.Errorf("scanner.Scan() raised an error: %v", err)
		}

		// Use reflect.DeepEqual to compare the slices
		if !reflect.DeepEqual(got, expected) {
			t.Errorf("scanner.Scan() = %v, want %v", got, expected)
		}
	})
}

func TestOperatorsSuccess(t *testing.T){
	expected := []token.Token{
		token.CreateToken(token.EQUAL_EQUAL, 0, 1),
		token.CreateToken(token.SLASH_ASSIGN, 0, 3),
		token.CreateToken(token.MULT, 0, 5),
		token.CreateToken(token.ADD, 0, 6),
		token.CreateToken(token.LARGER, 0, 7),
		token.CreateToken(token.SUB, 0, 8),
		token.CreateToken(token.LESS, 0, 9),
		token.CreateToken(token.NOT_EQUAL, 0, 10),
		token.CreateToken(token.LESS_EQUAL, 0, 12),
		token.CreateToken(token.LARGER_EQUAL, 0, 14),
		token.CreateToken(token.BANG, 0, 16),
		token.CreateToken(token.BANG, 0, 17),
		token.CreateToken(token.EOF, 0, 18),
	}
	scanner := New("==/=*+>-<!=<=>=!!")
	runTestSuccess(t,scanner,expected)

}

func TestScanSuccess(t *testing.T) {
	expected := []token.Token{
		token.CreateToken(token.LPA, 0, 1),
		token.CreateToken(token.RPA, 0, 2),
		token.CreateToken(token.LCUR, 0, 3),
		token.CreateToken(token.RCUR, 0, 4),
		token.CreateToken(token.MULT, 0, 5),
		token.CreateToken(token.MULT, 0, 6),
		token.CreateToken(token.SEMICOLON, 0, 7),
		token.CreateToken(token.ADD, 0, 8),
		token.CreateToken(token.NOT_EQUAL, 0, 9),
		token.CreateToken(token.LESS_EQUAL, 0, 11),
		token.CreateToken(token.EOF, 0, 13),
	}

	scanner := New("(){}**;+!=<=")
	runTestSuccess(t,scanner,expected)

}
